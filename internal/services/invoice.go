package services

import (
	"time"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput describes one line item for an invoice or a sale document.
// Price is optional and defaults to the product's current price, which
// is then kept as a snapshot on the line.
type ItemInput struct {
	ProductID uint
	Quantity  int
	Price     *decimal.Decimal
}

// InvoiceInput is the payload for creating an invoice.
type InvoiceInput struct {
	CustomerID uint
	Date       time.Time
	Items      []ItemInput
}

// InvoiceService owns the invoice lifecycle: sequential "СЧ-N"
// numbering, item/stock bookkeeping, total recalculation, and the
// paid-invoice transition that spawns a cashless sale document.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{db: db} }

// Create issues a new invoice. Invoices are restricted to company
// customers. Each item debits stock and the total is recomputed, all
// inside one transaction.
func (s *InvoiceService) Create(in InvoiceInput) (*models.Invoice, error) {
	var customer models.Customer
	if err := s.db.First(&customer, in.CustomerID).Error; err != nil {
		return nil, err
	}
	if !customer.IsCompany {
		return nil, validationf(ErrDocumentValidation, "invoices can only be issued to company customers")
	}
	inv := models.Invoice{CustomerID: in.CustomerID, Date: dateOrToday(in.Date)}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		inv.Number = number
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			if err := createInvoiceItem(tx, inv.ID, it); err != nil {
				return err
			}
		}
		return recalcInvoiceTotal(tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

func createInvoiceItem(tx *gorm.DB, invoiceID uint, in ItemInput) error {
	if in.Quantity < 1 {
		return validationf(ErrDocumentValidation, "item quantity must be at least 1")
	}
	p, err := debitStock(tx, in.ProductID, in.Quantity)
	if err != nil {
		return err
	}
	price := p.Price
	if in.Price != nil {
		price = *in.Price
	}
	item := models.InvoiceItem{InvoiceID: invoiceID, ProductID: in.ProductID, Quantity: in.Quantity, Price: price}
	return tx.Create(&item).Error
}

func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.Preload("Customer").Preload("Items.Product").First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invoices newest first, paginated.
func (s *InvoiceService) List(limit, offset int) ([]models.Invoice, int64, error) {
	var total int64
	if err := s.db.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invs []models.Invoice
	err := s.db.Preload("Customer").Preload("Items.Product").
		Order("date desc, id desc").Limit(limit).Offset(offset).Find(&invs).Error
	return invs, total, err
}

// AddItem appends a line to an invoice, debiting stock and recomputing
// the total atomically.
func (s *InvoiceService) AddItem(invoiceID uint, in ItemInput) (*models.Invoice, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, invoiceID).Error; err != nil {
			return err
		}
		if err := createInvoiceItem(tx, inv.ID, in); err != nil {
			return err
		}
		return recalcInvoiceTotal(tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

// UpdateItemQuantity edits a line as a compensating reversal followed
// by a fresh apply: the old quantity is credited back before the new
// quantity is validated against the restored stock.
func (s *InvoiceService) UpdateItemQuantity(itemID uint, quantity int) (*models.Invoice, error) {
	var invoiceID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.InvoiceItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		invoiceID = item.InvoiceID
		if _, err := creditStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if quantity < 1 {
			return validationf(ErrDocumentValidation, "item quantity must be at least 1")
		}
		if _, err := debitStock(tx, item.ProductID, quantity); err != nil {
			return err
		}
		if err := tx.Model(&models.InvoiceItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error; err != nil {
			return err
		}
		return recalcInvoiceTotal(tx, item.InvoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

// RemoveItem deletes a line and returns its quantity to stock.
func (s *InvoiceService) RemoveItem(itemID uint) (*models.Invoice, error) {
	var invoiceID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.InvoiceItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		invoiceID = item.InvoiceID
		if _, err := creditStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&models.InvoiceItem{}, item.ID).Error; err != nil {
			return err
		}
		return recalcInvoiceTotal(tx, item.InvoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

// MarkPaid flags the invoice as paid and creates the linked cashless
// sale document with the invoice total, exactly once: repeated calls
// find the existing document and do nothing.
func (s *InvoiceService) MarkPaid(invoiceID uint) (*models.Invoice, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, invoiceID).Error; err != nil {
			return err
		}
		if !inv.IsPaid {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("is_paid", true).Error; err != nil {
				return err
			}
		}
		var linked int64
		if err := tx.Model(&models.SaleDocument{}).Where("invoice_id = ?", inv.ID).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return nil
		}
		number, err := nextDocumentNumber(tx, models.DocTypeCashless)
		if err != nil {
			return err
		}
		doc := models.SaleDocument{
			Type:       models.DocTypeCashless,
			Number:     number,
			Date:       dateOnly(time.Now()),
			CustomerID: inv.CustomerID,
			InvoiceID:  &inv.ID,
			Total:      inv.Total,
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

// Delete removes an invoice and its items, returning item quantities
// to stock. Blocked while a sale document references the invoice.
// Invoice numbers are deliberately not compacted.
func (s *InvoiceService) Delete(invoiceID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Items").First(&inv, invoiceID).Error; err != nil {
			return err
		}
		var linked int64
		if err := tx.Model(&models.SaleDocument{}).Where("invoice_id = ?", inv.ID).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return validationf(ErrReferencedEntityProtected, "the invoice already has a sale document")
		}
		for _, it := range inv.Items {
			if _, err := creditStock(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
}

// UnpaidByCustomer lists a customer's open invoices, the lookup used
// by the cashless sale form.
func (s *InvoiceService) UnpaidByCustomer(customerID uint) ([]models.Invoice, error) {
	var customer models.Customer
	if err := s.db.First(&customer, customerID).Error; err != nil {
		return nil, err
	}
	var invs []models.Invoice
	err := s.db.Where("customer_id = ? AND is_paid = ?", customerID, false).
		Order("date desc, id desc").Find(&invs).Error
	return invs, err
}
