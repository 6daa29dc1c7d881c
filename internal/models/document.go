package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale document types. Each type owns its own gapless number series.
const (
	DocTypeCashless = "cashless"
	DocTypeCash     = "cash"
	DocTypeReturn   = "return"
)

// DocPrefixes maps a document type to its number series prefix.
var DocPrefixes = map[string]string{
	DocTypeCashless: "БН",
	DocTypeCash:     "ТЧ",
	DocTypeReturn:   "ВР",
}

// DocTypeLabels carries the human-readable names used by the journal
// and the sales report.
var DocTypeLabels = map[string]string{
	DocTypeCashless: "Безналичный расчет",
	DocTypeCash:     "Наличный расчет",
	DocTypeReturn:   "Возврат товара",
}

// SaleDocument records an actual transfer of goods. One table carries
// all three variants; the type-specific columns are only populated for
// their variant and the service layer validates per type:
//
//	cashless: InvoiceID (paid invoice, one-to-one)
//	cash:     CashRegister
//	return:   OriginalSaleID (+ optional Reason)
type SaleDocument struct {
	ID         uint            `gorm:"primaryKey"`
	Type       string          `gorm:"size:10;not null;index:idx_doc_type_date,priority:1"`
	Number     string          `gorm:"size:20;not null;uniqueIndex"`
	Date       time.Time       `gorm:"type:date;not null;index:idx_doc_type_date,priority:2"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerID uint            `gorm:"not null;index"`
	Customer   Customer        `gorm:"foreignKey:CustomerID"`

	InvoiceID *uint    `gorm:"uniqueIndex"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID"`

	CashRegister string `gorm:"size:50"`

	OriginalSaleID *uint
	OriginalSale   *SaleDocument `gorm:"foreignKey:OriginalSaleID"`
	Reason         string

	Items     []DocumentItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// IsSale reports whether the document moves goods out of stock.
func (d *SaleDocument) IsSale() bool {
	return d.Type == DocTypeCash || d.Type == DocTypeCashless
}

// DocumentItem is one (product, quantity, price snapshot) line of a
// sale document. At most one line per product and document.
type DocumentItem struct {
	ID         uint            `gorm:"primaryKey"`
	DocumentID uint            `gorm:"not null;uniqueIndex:idx_document_product,priority:1"`
	ProductID  uint            `gorm:"not null;uniqueIndex:idx_document_product,priority:2"`
	Product    Product         `gorm:"foreignKey:ProductID"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time
}
