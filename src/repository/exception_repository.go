package repository

import (
	"context"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExceptionRepository handles persistence of unexpected server errors.
type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{
		db: database.MainDB,
	}
}

func NewExceptionRepositoryWithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Create persists a new exception in the database.
func (r *ExceptionRepository) Create(
	ctx context.Context,
	exc *model.Exception,
) error {

	logger.WithFields(logger.Fields{
		"service": exc.Service,
		"module":  exc.Module,
		"method":  exc.Method,
		"level":   exc.Level,
	}).Debug("Persisting system exception")

	return r.db.WithContext(ctx).Create(exc).Error
}
