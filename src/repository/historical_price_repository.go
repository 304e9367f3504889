package repository

import (
	"context"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoricalPriceRepository stores daily closes per instrument.
type HistoricalPriceRepository struct {
	db *gorm.DB
}

func NewHistoricalPriceRepository() *HistoricalPriceRepository {
	logger.WithField("component", "HistoricalPriceRepository").
		Info("Creating new HistoricalPriceRepository with MainDB")

	return &HistoricalPriceRepository{
		db: database.MainDB,
	}
}

func NewHistoricalPriceRepositoryWithDB(db *gorm.DB) *HistoricalPriceRepository {
	return &HistoricalPriceRepository{db: db}
}

// LatestDate returns the most recent stored date, restricted to symbols when
// any are given. Returns (nil, nil) when nothing matches.
func (r *HistoricalPriceRepository) LatestDate(ctx context.Context, symbols []string) (*time.Time, error) {
	fields := logger.Fields{
		"repo":    "HistoricalPriceRepository",
		"op":      "LatestDate",
		"symbols": len(symbols),
	}

	var rows []model.HistoricalPrice
	query := r.db.WithContext(ctx).Model(&model.HistoricalPrice{})
	if len(symbols) > 0 {
		query = query.Where("symbol IN ?", symbols)
	}

	if err := query.Order("date DESC").Limit(1).Find(&rows).Error; err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to fetch latest historical date")
		return nil, err
	}

	if len(rows) == 0 {
		logger.WithFields(fields).Debug("No historical prices stored")
		return nil, nil
	}

	latest := rows[0].Date
	return &latest, nil
}

// LatestDateForSymbol returns the last stored date of one symbol, or nil.
func (r *HistoricalPriceRepository) LatestDateForSymbol(ctx context.Context, symbol string) (*time.Time, error) {
	return r.LatestDate(ctx, []string{symbol})
}

// Upsert inserts rows, updating close/currency/source on (symbol, date) conflicts.
func (r *HistoricalPriceRepository) Upsert(ctx context.Context, rows []model.HistoricalPrice) error {
	if len(rows) == 0 {
		return nil
	}

	fields := logger.Fields{
		"repo": "HistoricalPriceRepository",
		"op":   "Upsert",
		"rows": len(rows),
	}

	// dates are stored as UTC midnight so text ordering in sqlite stays chronological
	for i := range rows {
		d := rows[i].Date.UTC()
		rows[i].Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"close", "currency", "source", "updated_at"}),
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to upsert historical prices")
		return err
	}

	logger.WithFields(fields).Info("Historical prices upserted")

	return nil
}
