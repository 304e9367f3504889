package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDateLayout is the wire and storage layout of RawPosition.TransactionDate.
const TransactionDateLayout = "2006-01-02"

// RawPosition is a single holding as submitted by an update or import request.
type RawPosition struct {
	Ticker          string          `json:"ticker"`
	FullName        string          `json:"fullName,omitempty"`
	Broker          string          `json:"broker,omitempty"`
	Account         string          `json:"account,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	CostPerUnit     decimal.Decimal `json:"costPerUnit"`
	Currency        string          `json:"currency,omitempty"`
	TransactionDate string          `json:"transactionDate,omitempty"`
}

// Position is a stored holding belonging to a position set.
type Position struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PositionSetID   uint            `gorm:"index;not null" json:"position_set_id"`
	Ticker          string          `gorm:"size:40;not null;index" json:"ticker"`
	FullName        string          `gorm:"size:200" json:"full_name"`
	Broker          string          `gorm:"size:80" json:"broker"`
	Account         string          `gorm:"size:80" json:"account"`
	Quantity        decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	CostPerUnit     decimal.Decimal `gorm:"type:numeric" json:"cost_per_unit"`
	Currency        string          `gorm:"size:3" json:"currency"`
	TransactionDate string          `gorm:"size:10" json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Position) TableName() string {
	return "positions"
}

// NewPosition converts a raw record into a storable position of the given set.
func NewPosition(setID uint, raw RawPosition) Position {
	return Position{
		PositionSetID:   setID,
		Ticker:          raw.Ticker,
		FullName:        raw.FullName,
		Broker:          raw.Broker,
		Account:         raw.Account,
		Quantity:        raw.Quantity,
		CostPerUnit:     raw.CostPerUnit,
		Currency:        raw.Currency,
		TransactionDate: raw.TransactionDate,
	}
}

// Raw converts the stored position back to its wire shape.
func (p Position) Raw() RawPosition {
	return RawPosition{
		Ticker:          p.Ticker,
		FullName:        p.FullName,
		Broker:          p.Broker,
		Account:         p.Account,
		Quantity:        p.Quantity,
		CostPerUnit:     p.CostPerUnit,
		Currency:        p.Currency,
		TransactionDate: p.TransactionDate,
	}
}
