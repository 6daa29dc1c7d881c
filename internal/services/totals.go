package services

import (
	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Total recalculation rule: total = Σ(price × quantity) over the
// current items, 0.00 when there are none. Idempotent; runs after any
// item mutation within the same transaction.

func recalcInvoiceTotal(tx *gorm.DB, invoiceID uint) error {
	var items []models.InvoiceItem
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).Update("total", total).Error
}

func recalcDocumentTotal(tx *gorm.DB, documentID uint) error {
	var items []models.DocumentItem
	if err := tx.Where("document_id = ?", documentID).Find(&items).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return tx.Model(&models.SaleDocument{}).Where("id = ?", documentID).Update("total", total).Error
}
