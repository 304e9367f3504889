package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	"gorm.io/gorm"
)

// ErrNotInitialized is returned by Ready before InitMainDB succeeded.
var ErrNotInitialized = errors.New("database not initialized")

// Ready reports whether db answers a ping and the position set table is reachable.
func Ready(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrNotInitialized
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&model.PositionSet{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to access position_sets: %w", err)
	}

	return nil
}
