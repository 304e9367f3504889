package model

import "time"

// Exception is an unexpected server-side failure kept for later inspection.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "portfolio-api"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "position_sets"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "DELETE /position-sets/{id}"

	Message string `gorm:"type:text" json:"message"`
	Level   string `gorm:"size:20;index" json:"level"` // warn | error | fatal

	RequestID string `gorm:"size:64" json:"request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
