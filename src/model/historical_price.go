package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoricalPrice is one daily close for an instrument.
// (symbol, date) is unique.
type HistoricalPrice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Symbol    string          `gorm:"size:40;not null;uniqueIndex:idx_historical_prices_symbol_date" json:"symbol"`
	Date      time.Time       `gorm:"not null;uniqueIndex:idx_historical_prices_symbol_date" json:"date"`
	Close     decimal.Decimal `gorm:"type:numeric" json:"close"`
	Currency  string          `gorm:"size:3" json:"currency"`
	Source    string          `gorm:"size:40" json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (HistoricalPrice) TableName() string {
	return "historical_prices"
}
