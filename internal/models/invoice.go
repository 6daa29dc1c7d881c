package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoicePrefix is the number series prefix for invoices ("СЧ-N").
const InvoicePrefix = "СЧ"

// Invoice is a pre-sale bill issued to a company customer. Marking it
// paid spawns exactly one cashless SaleDocument linked one-to-one.
// Total is derived from the items, never edited directly.
type Invoice struct {
	ID         uint            `gorm:"primaryKey"`
	Number     string          `gorm:"size:20;not null;uniqueIndex"`
	Date       time.Time       `gorm:"type:date;not null;index"`
	CustomerID uint            `gorm:"not null"`
	Customer   Customer        `gorm:"foreignKey:CustomerID"`
	IsPaid     bool            `gorm:"not null;default:false;index"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Items      []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

// InvoiceItem holds a price snapshot taken when the line is added, so
// later product price changes do not rewrite history.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey"`
	InvoiceID uint            `gorm:"not null;uniqueIndex:idx_invoice_product,priority:1"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_invoice_product,priority:2"`
	Product   Product         `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}
