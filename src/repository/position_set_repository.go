package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPositionSetNotFound = errors.New("position set not found")
	ErrPositionSetExists   = errors.New("position set already exists")
)

// Overview is the list of position sets plus the one currently active, if any.
type Overview struct {
	PositionSets []model.PositionSet
	ActiveSet    *model.PositionSet
}

// PositionSetRepository stores position sets, their positions and the active pointer.
type PositionSetRepository struct {
	db *gorm.DB
}

// NewPositionSetRepository creates a repository on the main database.
func NewPositionSetRepository() *PositionSetRepository {
	logger.WithField("component", "PositionSetRepository").
		Info("Creating new PositionSetRepository with MainDB")

	return &PositionSetRepository{
		db: database.MainDB,
	}
}

// NewPositionSetRepositoryWithDB creates a repository on the given gorm DB.
func NewPositionSetRepositoryWithDB(db *gorm.DB) *PositionSetRepository {
	logger.WithField("component", "PositionSetRepository").
		Debug("Creating PositionSetRepository with custom DB instance")

	return &PositionSetRepository{db: db}
}

// ListOverview returns every set ordered by id and the active one.
func (r *PositionSetRepository) ListOverview(ctx context.Context) (Overview, error) {
	logger.WithFields(logger.Fields{
		"repo": "PositionSetRepository",
		"op":   "ListOverview",
	}).Debug("Listing position sets")

	overview := Overview{PositionSets: []model.PositionSet{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id ASC").Find(&overview.PositionSets).Error; err != nil {
			return err
		}

		activeID, err := activeSetID(tx)
		if err != nil {
			return err
		}

		for i := range overview.PositionSets {
			if activeID != nil && overview.PositionSets[i].ID == *activeID {
				overview.PositionSets[i].IsActive = true
				active := overview.PositionSets[i]
				overview.ActiveSet = &active
			}
		}
		return nil
	})
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionSetRepository",
			"op":   "ListOverview",
		}).WithError(err).Error("Failed to list position sets")

		return Overview{}, err
	}

	return overview, nil
}

// GetActive returns the active set or (nil, nil) when no set is active.
func (r *PositionSetRepository) GetActive(ctx context.Context) (*model.PositionSet, error) {
	var active *model.PositionSet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := activeSetID(tx)
		if err != nil || id == nil {
			return err
		}

		var set model.PositionSet
		if err := tx.First(&set, *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		set.IsActive = true
		active = &set
		return nil
	})
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionSetRepository",
			"op":   "GetActive",
		}).WithError(err).Error("Failed to fetch active position set")

		return nil, err
	}

	return active, nil
}

// Activate points the active pointer at id. The pointer is a single row, so
// readers see either the previous or the new active set, never both.
func (r *PositionSetRepository) Activate(ctx context.Context, id uint) error {
	fields := logger.Fields{
		"repo": "PositionSetRepository",
		"op":   "Activate",
		"id":   id,
	}
	logger.WithFields(fields).Debug("Activating position set")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, id); err != nil {
			return err
		}

		return setActiveSetID(tx, &id)
	})
	if err != nil {
		if errors.Is(err, ErrPositionSetNotFound) {
			logger.WithFields(fields).Info("Position set not found")
			return err
		}

		logger.WithFields(fields).WithError(err).Error("Failed to activate position set")
		return err
	}

	logger.WithFields(fields).Info("Position set activated")

	return nil
}

// DeleteByID removes the set and its positions. Deleting the active set
// leaves no set active.
func (r *PositionSetRepository) DeleteByID(ctx context.Context, id uint) error {
	fields := logger.Fields{
		"repo": "PositionSetRepository",
		"op":   "DeleteByID",
		"id":   id,
	}
	logger.WithFields(fields).Debug("Deleting position set")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, id); err != nil {
			return err
		}

		if err := tx.Where("position_set_id = ?", id).Delete(&model.Position{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.PositionSet{}, id).Error; err != nil {
			return err
		}

		return tx.Model(&model.ActivePositionSet{}).
			Where("id = ? AND position_set_id = ?", model.ActivePositionSetRowID, id).
			Updates(map[string]interface{}{
				"position_set_id": nil,
				"updated_at":      time.Now().UTC(),
			}).Error
	})
	if err != nil {
		if errors.Is(err, ErrPositionSetNotFound) {
			logger.WithFields(fields).Info("Position set not found")
			return err
		}

		logger.WithFields(fields).WithError(err).Error("Failed to delete position set")
		return err
	}

	logger.WithFields(fields).Info("Position set deleted")

	return nil
}

// ExportByID reads a set and its positions ordered by id. It never writes.
func (r *PositionSetRepository) ExportByID(ctx context.Context, id uint) (*model.PositionSet, []model.Position, error) {
	fields := logger.Fields{
		"repo": "PositionSetRepository",
		"op":   "ExportByID",
		"id":   id,
	}

	var (
		set       model.PositionSet
		positions []model.Position
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&set, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPositionSetNotFound
			}
			return err
		}

		activeID, err := activeSetID(tx)
		if err != nil {
			return err
		}
		set.IsActive = activeID != nil && *activeID == set.ID

		return tx.Where("position_set_id = ?", id).Order("id ASC").Find(&positions).Error
	})
	if err != nil {
		if errors.Is(err, ErrPositionSetNotFound) {
			logger.WithFields(fields).Info("Position set not found")
			return nil, nil, err
		}

		logger.WithFields(fields).WithError(err).Error("Failed to export position set")
		return nil, nil, err
	}

	logger.WithFields(fields).WithField("rows_return", len(positions)).Debug("Position set exported")

	return &set, positions, nil
}

// FindByName returns the set with the given name or (nil, nil).
func (r *PositionSetRepository) FindByName(ctx context.Context, name string) (*model.PositionSet, error) {
	var set model.PositionSet

	err := r.db.WithContext(ctx).Where("name = ?", name).First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(logger.Fields{
			"repo": "PositionSetRepository",
			"op":   "FindByName",
			"name": name,
		}).WithError(err).Error("Failed to fetch position set by name")

		return nil, err
	}

	return &set, nil
}

// Create inserts the set together with its positions.
// The given set is updated with the generated ID and timestamps.
func (r *PositionSetRepository) Create(ctx context.Context, set *model.PositionSet, positions []model.RawPosition) error {
	fields := logger.Fields{
		"repo":      "PositionSetRepository",
		"op":        "Create",
		"name":      set.Name,
		"positions": len(positions),
	}
	logger.WithFields(fields).Debug("Creating position set")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.PositionSet{}).Where("name = ?", set.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPositionSetExists
		}

		if err := tx.Omit(clause.Associations).Create(set).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPositionSetExists
			}
			return err
		}

		return insertPositions(tx, set.ID, positions)
	})
	if err != nil {
		if errors.Is(err, ErrPositionSetExists) {
			logger.WithFields(fields).Info("Position set name already taken")
			return err
		}

		logger.WithFields(fields).WithError(err).Error("Failed to create position set")
		return err
	}

	logger.WithFields(fields).WithField("id", set.ID).Info("Position set created")

	return nil
}

// ReplacePositions overwrites every position of the set with the given ones.
func (r *PositionSetRepository) ReplacePositions(ctx context.Context, setID uint, positions []model.RawPosition) error {
	fields := logger.Fields{
		"repo":      "PositionSetRepository",
		"op":        "ReplacePositions",
		"id":        setID,
		"positions": len(positions),
	}
	logger.WithFields(fields).Debug("Replacing positions")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, setID); err != nil {
			return err
		}

		if err := tx.Where("position_set_id = ?", setID).Delete(&model.Position{}).Error; err != nil {
			return err
		}

		if err := insertPositions(tx, setID, positions); err != nil {
			return err
		}

		return tx.Model(&model.PositionSet{}).Where("id = ?", setID).Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to replace positions")
		return err
	}

	logger.WithFields(fields).Info("Positions replaced")

	return nil
}

// ActiveSymbols returns the distinct tickers held by the active set.
func (r *PositionSetRepository) ActiveSymbols(ctx context.Context) ([]string, error) {
	symbols := []string{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := activeSetID(tx)
		if err != nil || id == nil {
			return err
		}

		return tx.Model(&model.Position{}).
			Where("position_set_id = ?", *id).
			Distinct().
			Order("ticker ASC").
			Pluck("ticker", &symbols).Error
	})
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionSetRepository",
			"op":   "ActiveSymbols",
		}).WithError(err).Error("Failed to fetch active symbols")

		return nil, err
	}

	return symbols, nil
}

func ensureExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&model.PositionSet{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPositionSetNotFound
	}
	return nil
}

func insertPositions(tx *gorm.DB, setID uint, raws []model.RawPosition) error {
	if len(raws) == 0 {
		return nil
	}

	rows := make([]model.Position, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, model.NewPosition(setID, raw))
	}

	return tx.CreateInBatches(rows, 200).Error
}

func activeSetID(tx *gorm.DB) (*uint, error) {
	var pointer model.ActivePositionSet
	err := tx.Where("id = ?", model.ActivePositionSetRowID).Limit(1).Find(&pointer).Error
	if err != nil {
		return nil, err
	}
	return pointer.PositionSetID, nil
}

func setActiveSetID(tx *gorm.DB, id *uint) error {
	pointer := model.ActivePositionSet{
		ID:            model.ActivePositionSetRowID,
		PositionSetID: id,
		UpdatedAt:     time.Now().UTC(),
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position_set_id", "updated_at"}),
	}).Create(&pointer).Error
}
