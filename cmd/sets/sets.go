// Package sets implements the position set commands of the CLI.
package sets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Sets struct {
	Log *logger.Entry
	DB  *gorm.DB

	service *portfolio.Service
}

func (s *Sets) svc() *portfolio.Service {
	if s.service == nil {
		s.service = portfolio.NewService(repository.NewPositionSetRepositoryWithDB(s.DB), nil, portfolio.GetConfig())
	}
	return s.service
}

// Import reads an export document from path and stores it as a new set.
func (s *Sets) Import(ctx context.Context, path string) (*model.PositionSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc portfolio.ImportDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	set, err := s.svc().Import(ctx, doc)
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logger.Fields{
		"position_set_id": set.ID,
		"name":            set.Name,
		"positions":       len(doc.Positions),
	}).Info("position set imported")
	return set, nil
}

// Export writes set id to dir using the same filename the HTTP export suggests.
func (s *Sets) Export(ctx context.Context, id string, dir string) (string, error) {
	export, err := s.svc().Export(ctx, id)
	if err != nil {
		return "", err
	}

	body, err := export.Marshal()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, export.Filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}

	s.Log.WithField("path", path).Info("position set exported")
	return path, nil
}

// Demo seeds the demo set.
func (s *Sets) Demo(ctx context.Context) (*model.PositionSet, error) {
	set, created, err := s.svc().SeedDemo(ctx)
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logger.Fields{
		"position_set_id": set.ID,
		"created":         created,
	}).Info("demo position set ready")
	return set, nil
}

// Activate makes id the active set.
func (s *Sets) Activate(ctx context.Context, id string) error {
	return s.svc().Activate(ctx, id)
}
