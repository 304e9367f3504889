package migrations

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// createActivePointer inserts the singleton active_position_set row with no
// set selected. Activation only ever updates this row afterwards.
func createActivePointer(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Table("active_position_set").
		Create(map[string]interface{}{
			"id":              1,
			"position_set_id": nil,
			"updated_at":      time.Now().UTC(),
		}).Error
}

// backfillDisplayNames copies name into display_name for sets imported
// without a label.
func backfillDisplayNames(db *gorm.DB) error {
	return db.Table("position_sets").
		Where("display_name IS NULL OR display_name = ''").
		Update("display_name", gorm.Expr("name")).Error
}
