package model

import "time"

// InfoTypeWarning marks a position set holding demo/synthetic data.
const InfoTypeWarning = "warning"

// PositionSet is a named snapshot of portfolio holdings.
type PositionSet struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	DisplayName string `gorm:"size:200;not null" json:"display_name"`
	Description string `gorm:"type:text" json:"description"`
	InfoType    string `gorm:"size:20" json:"info_type"`

	// IsActive is derived from the active_position_set pointer, never stored.
	IsActive bool `gorm:"-" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Positions []Position `gorm:"foreignKey:PositionSetID" json:"-"`
}

func (PositionSet) TableName() string {
	return "position_sets"
}

// IsDemo reports whether the set is flagged as demo data.
func (p *PositionSet) IsDemo() bool {
	return p != nil && p.InfoType == InfoTypeWarning
}

// ActivePositionSetRowID is the primary key of the single pointer row.
const ActivePositionSetRowID uint = 1

// ActivePositionSet is a singleton row pointing at the active position set.
// A nil PositionSetID means no set is active.
type ActivePositionSet struct {
	ID            uint  `gorm:"primaryKey;autoIncrement:false"`
	PositionSetID *uint `gorm:"column:position_set_id"`
	UpdatedAt     time.Time
}

func (ActivePositionSet) TableName() string {
	return "active_position_set"
}
