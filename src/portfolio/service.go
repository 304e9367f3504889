// Package portfolio implements the position set lifecycle: listing, activation,
// deletion, export/import, demo detection and positions ingestion, plus the
// historical data freshness evaluation.
package portfolio

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"

	logger "github.com/sirupsen/logrus"
)

type positionSetStore interface {
	ListOverview(ctx context.Context) (repository.Overview, error)
	GetActive(ctx context.Context) (*model.PositionSet, error)
	Activate(ctx context.Context, id uint) error
	DeleteByID(ctx context.Context, id uint) error
	ExportByID(ctx context.Context, id uint) (*model.PositionSet, []model.Position, error)
	FindByName(ctx context.Context, name string) (*model.PositionSet, error)
	Create(ctx context.Context, set *model.PositionSet, positions []model.RawPosition) error
	ReplacePositions(ctx context.Context, setID uint, positions []model.RawPosition) error
}

// Publisher receives lifecycle events after successful mutations.
type Publisher interface {
	Publish(e events.Event)
}

// Overview is the wire shape of the position set listing.
type Overview struct {
	PositionSets []model.PositionSet `json:"position_sets"`
	ActiveSet    *model.PositionSet  `json:"active_set"`
}

// Export is a position set with its positions, ready to download.
type Export struct {
	PositionSet model.PositionSet   `json:"positionSet"`
	Positions   []model.RawPosition `json:"positions"`
	Filename    string              `json:"-"`
}

// Marshal renders the export deterministically.
func (e *Export) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// ImportDocument is the shape accepted by Import; it matches Export.
type ImportDocument struct {
	PositionSet model.PositionSet   `json:"positionSet"`
	Positions   []model.RawPosition `json:"positions"`
}

// DemoStatus tells clients whether the active set holds demo data.
type DemoStatus struct {
	IsDemoData  bool               `json:"isDemoData"`
	IsDemo      bool               `json:"isDemo"`
	PositionSet *model.PositionSet `json:"positionSet"`
}

type Service struct {
	store  positionSetStore
	events Publisher
	config Config
	log    *logger.Entry
}

// NewService wires the lifecycle API. publisher may be nil.
func NewService(store positionSetStore, publisher Publisher, config Config) *Service {
	return &Service{
		store:  store,
		events: publisher,
		config: config,
		log:    logger.WithField("component", "portfolio.Service"),
	}
}

// DefaultService wires the service to the main database.
func DefaultService(publisher Publisher) *Service {
	return NewService(repository.NewPositionSetRepository(), publisher, GetConfig())
}

// ParseID accepts a positive base-10 integer that fits a signed 64-bit
// column.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 63)
	if err != nil || id == 0 {
		return 0, &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

func (s *Service) ListOverview(ctx context.Context) (Overview, error) {
	overview, err := s.store.ListOverview(ctx)
	if err != nil {
		return Overview{}, wrapStore("list position sets", err)
	}

	return Overview{
		PositionSets: overview.PositionSets,
		ActiveSet:    overview.ActiveSet,
	}, nil
}

func (s *Service) Activate(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	if err := s.store.Activate(ctx, id); err != nil {
		return wrapStore("activate position set", err)
	}

	s.publish(events.TypePositionSetActivated, id)
	return nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return wrapStore("delete position set", err)
	}

	s.publish(events.TypePositionSetDeleted, id)
	return nil
}

func (s *Service) Export(ctx context.Context, rawID string) (*Export, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	set, positions, err := s.store.ExportByID(ctx, id)
	if err != nil {
		return nil, wrapStore("export position set", err)
	}

	raws := make([]model.RawPosition, 0, len(positions))
	for _, p := range positions {
		raws = append(raws, p.Raw())
	}

	return &Export{
		PositionSet: *set,
		Positions:   raws,
		Filename:    ExportFilename(set.Name),
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFilename is "<name>-positions.json" with characters that are unsafe
// in a Content-Disposition filename replaced by "_".
func ExportFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if safe == "" {
		safe = "position-set"
	}
	return safe + "-positions.json"
}

func (s *Service) DemoStatus(ctx context.Context) (DemoStatus, error) {
	active, err := s.store.GetActive(ctx)
	if err != nil {
		return DemoStatus{}, wrapStore("get active position set", err)
	}

	demo := active.IsDemo()
	return DemoStatus{
		IsDemoData:  demo,
		IsDemo:      demo,
		PositionSet: active,
	}, nil
}

// ValidatePositions checks each record before anything is written.
func ValidatePositions(positions []model.RawPosition) error {
	for i, p := range positions {
		if strings.TrimSpace(p.Ticker) == "" {
			return &ValidationError{Field: "positions[" + strconv.Itoa(i) + "].ticker", Reason: "is required"}
		}
		if p.TransactionDate != "" {
			if _, err := time.Parse(model.TransactionDateLayout, p.TransactionDate); err != nil {
				return &ValidationError{Field: "positions[" + strconv.Itoa(i) + "].transactionDate", Reason: "must be YYYY-MM-DD"}
			}
		}
	}
	return nil
}

// WritePositions replaces the positions of the active set. With no active set,
// the default set is created (or reused) and activated first.
func (s *Service) WritePositions(ctx context.Context, positions []model.RawPosition) error {
	if err := ValidatePositions(positions); err != nil {
		return err
	}

	active, err := s.store.GetActive(ctx)
	if err != nil {
		return wrapStore("get active position set", err)
	}

	if active == nil {
		active, err = s.ensureDefaultSet(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Activate(ctx, active.ID); err != nil {
			return wrapStore("activate default position set", err)
		}
		s.publish(events.TypePositionSetActivated, active.ID)
	}

	if err := s.store.ReplacePositions(ctx, active.ID, positions); err != nil {
		return wrapStore("write positions", err)
	}

	s.log.WithFields(logger.Fields{
		"position_set_id": active.ID,
		"positions":       len(positions),
	}).Info("positions written")

	s.publish(events.TypePositionsUpdated, active.ID)
	return nil
}

func (s *Service) ensureDefaultSet(ctx context.Context) (*model.PositionSet, error) {
	existing, err := s.store.FindByName(ctx, s.config.DefaultSetName)
	if err != nil {
		return nil, wrapStore("find default position set", err)
	}
	if existing != nil {
		return existing, nil
	}

	set := &model.PositionSet{
		Name:        s.config.DefaultSetName,
		DisplayName: s.config.DefaultSetLabel,
	}
	if err := s.store.Create(ctx, set, nil); err != nil {
		return nil, wrapStore("create default position set", err)
	}
	return set, nil
}

// Import creates a new set from an exported document. The set is not activated.
func (s *Service) Import(ctx context.Context, doc ImportDocument) (*model.PositionSet, error) {
	name := strings.TrimSpace(doc.PositionSet.Name)
	if name == "" {
		return nil, &ValidationError{Field: "positionSet.name", Reason: "is required"}
	}
	if err := ValidatePositions(doc.Positions); err != nil {
		return nil, err
	}

	display := strings.TrimSpace(doc.PositionSet.DisplayName)
	if display == "" {
		display = name
	}

	set := &model.PositionSet{
		Name:        name,
		DisplayName: display,
		Description: doc.PositionSet.Description,
		InfoType:    doc.PositionSet.InfoType,
	}
	if err := s.store.Create(ctx, set, doc.Positions); err != nil {
		return nil, wrapStore("import position set", err)
	}

	s.publish(events.TypePositionSetImported, set.ID)
	return set, nil
}

func (s *Service) publish(eventType string, setID uint) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.NewEvent(eventType, setID))
}
