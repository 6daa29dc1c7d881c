package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product carries the current list price and on-hand quantity.
// Quantity is the single source of truth for sale eligibility and is
// never allowed to go negative.
type Product struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"size:255;not null;index"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
