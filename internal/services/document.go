package services

import (
	"errors"
	"strings"
	"time"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentInput is the payload for creating a sale document. Only the
// fields of the requested variant are consulted:
//
//	cashless: InvoiceID
//	cash:     CashRegister
//	return:   OriginalSaleID, Reason
//
// Total is honored only when no items are supplied (the cashless
// document spawned from a paid invoice carries the invoice total);
// with items present the total is always recomputed from them.
type DocumentInput struct {
	Type           string
	CustomerID     uint
	Date           time.Time
	InvoiceID      *uint
	CashRegister   string
	OriginalSaleID *uint
	Reason         string
	Total          *decimal.Decimal
	Items          []ItemInput
}

// JournalFilter narrows the document journal listing.
type JournalFilter struct {
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Customer  string
	Limit     int
	Offset    int
}

// DocumentService owns the sale document lifecycle: per-variant
// validation, type-series numbering with delete compaction, per-item
// stock adjustment and total recalculation.
type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService { return &DocumentService{db: db} }

// Create validates the variant, assigns the next number in the type
// series and applies every item's stock effect. All of it lands in one
// transaction or not at all.
func (s *DocumentService) Create(in DocumentInput) (*models.SaleDocument, error) {
	var doc models.SaleDocument
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := validateDocument(tx, &in); err != nil {
			return err
		}
		number, err := nextDocumentNumber(tx, in.Type)
		if err != nil {
			return err
		}
		doc = models.SaleDocument{
			Type:           in.Type,
			Number:         number,
			Date:           dateOrToday(in.Date),
			CustomerID:     in.CustomerID,
			InvoiceID:      in.InvoiceID,
			CashRegister:   strings.TrimSpace(in.CashRegister),
			OriginalSaleID: in.OriginalSaleID,
			Reason:         in.Reason,
		}
		if in.Total != nil {
			doc.Total = *in.Total
		}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			if err := createDocumentItem(tx, &doc, it); err != nil {
				return err
			}
		}
		if len(in.Items) > 0 {
			return recalcDocumentTotal(tx, doc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(doc.ID)
}

func validateDocument(tx *gorm.DB, in *DocumentInput) error {
	var customer models.Customer
	if err := tx.First(&customer, in.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationf(ErrDocumentValidation, "customer %d does not exist", in.CustomerID)
		}
		return err
	}
	switch in.Type {
	case models.DocTypeCashless:
		if in.InvoiceID == nil {
			return validationf(ErrDocumentValidation, "a cashless sale requires an invoice")
		}
		var inv models.Invoice
		if err := tx.First(&inv, *in.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf(ErrDocumentValidation, "invoice %d does not exist", *in.InvoiceID)
			}
			return err
		}
		if !inv.IsPaid {
			return validationf(ErrDocumentValidation, "the invoice must be paid before creating a sale")
		}
	case models.DocTypeCash:
		if strings.TrimSpace(in.CashRegister) == "" {
			return validationf(ErrDocumentValidation, "a cash sale requires a cash register number")
		}
	case models.DocTypeReturn:
		if in.OriginalSaleID == nil {
			return validationf(ErrDocumentValidation, "a return requires the original sale")
		}
		var orig models.SaleDocument
		if err := tx.First(&orig, *in.OriginalSaleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf(ErrDocumentValidation, "original sale %d does not exist", *in.OriginalSaleID)
			}
			return err
		}
		if orig.Type == models.DocTypeReturn {
			return validationf(ErrDocumentValidation, "cannot create a return for a return")
		}
		var existing int64
		if err := tx.Model(&models.SaleDocument{}).Where("original_sale_id = ?", orig.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return validationf(ErrDocumentValidation, "the original sale already has a return")
		}
		if orig.CustomerID != in.CustomerID {
			return validationf(ErrDocumentValidation, "the customer must match the original sale")
		}
	default:
		return validationf(ErrDocumentValidation, "unknown document type %q", in.Type)
	}
	return nil
}

// createDocumentItem applies the stock adjustment rule for one line:
// sales debit the product, returns validate against the original sale
// and credit it back.
func createDocumentItem(tx *gorm.DB, doc *models.SaleDocument, in ItemInput) error {
	if in.Quantity < 1 {
		return validationf(ErrDocumentValidation, "item quantity must be at least 1")
	}
	var product *models.Product
	var err error
	if doc.Type == models.DocTypeReturn {
		if err := validateReturnItem(tx, *doc.OriginalSaleID, in.ProductID, in.Quantity); err != nil {
			return err
		}
		product, err = creditStock(tx, in.ProductID, in.Quantity)
	} else {
		product, err = debitStock(tx, in.ProductID, in.Quantity)
	}
	if err != nil {
		return err
	}
	price := product.Price
	if in.Price != nil {
		price = *in.Price
	}
	item := models.DocumentItem{DocumentID: doc.ID, ProductID: in.ProductID, Quantity: in.Quantity, Price: price}
	return tx.Create(&item).Error
}

// reverseDocumentItem undoes a line's stock effect: deleting a sale
// line returns goods to stock, deleting a return line takes the
// previously credited goods back out (and may fail with
// ErrInsufficientStock if they were sold in the meantime).
func reverseDocumentItem(tx *gorm.DB, docType string, item *models.DocumentItem) error {
	if docType == models.DocTypeReturn {
		_, err := debitStock(tx, item.ProductID, item.Quantity)
		return err
	}
	_, err := creditStock(tx, item.ProductID, item.Quantity)
	return err
}

func (s *DocumentService) Get(id uint) (*models.SaleDocument, error) {
	var doc models.SaleDocument
	err := s.db.Preload("Customer").Preload("Items.Product").
		Preload("Invoice").Preload("OriginalSale").First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List is the document journal: newest dates first, grouped by type,
// numbers in series order (ids track series order even after
// compaction, which only ever shifts numbers down in place).
func (s *DocumentService) List(f JournalFilter) ([]models.SaleDocument, int64, error) {
	q := s.db.Model(&models.SaleDocument{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.StartDate != nil {
		q = q.Where("date >= ?", dateOnly(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("date <= ?", dateOnly(*f.EndDate))
	}
	if c := strings.TrimSpace(f.Customer); c != "" {
		q = q.Joins("JOIN customers ON customers.id = sale_documents.customer_id").
			Where("lower(customers.name) LIKE ?", "%"+strings.ToLower(c)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	var docs []models.SaleDocument
	err := q.Preload("Customer").Order("date desc, type, sale_documents.id").
		Limit(limit).Offset(f.Offset).Find(&docs).Error
	return docs, total, err
}

// AddItem appends a line to a document, applying stock and total rules
// atomically.
func (s *DocumentService) AddItem(documentID uint, in ItemInput) (*models.SaleDocument, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.SaleDocument
		if err := tx.First(&doc, documentID).Error; err != nil {
			return err
		}
		if err := createDocumentItem(tx, &doc, in); err != nil {
			return err
		}
		return recalcDocumentTotal(tx, doc.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(documentID)
}

// UpdateItemQuantity reverses the line's previous stock effect, then
// re-validates and re-applies the new quantity as if newly created.
func (s *DocumentService) UpdateItemQuantity(itemID uint, quantity int) (*models.SaleDocument, error) {
	var documentID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.DocumentItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		var doc models.SaleDocument
		if err := tx.First(&doc, item.DocumentID).Error; err != nil {
			return err
		}
		documentID = doc.ID
		if err := reverseDocumentItem(tx, doc.Type, &item); err != nil {
			return err
		}
		if quantity < 1 {
			return validationf(ErrDocumentValidation, "item quantity must be at least 1")
		}
		if doc.Type == models.DocTypeReturn {
			if err := validateReturnItem(tx, *doc.OriginalSaleID, item.ProductID, quantity); err != nil {
				return err
			}
			if _, err := creditStock(tx, item.ProductID, quantity); err != nil {
				return err
			}
		} else {
			if _, err := debitStock(tx, item.ProductID, quantity); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.DocumentItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error; err != nil {
			return err
		}
		return recalcDocumentTotal(tx, doc.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(documentID)
}

// RemoveItem deletes a line and reverses its stock effect.
func (s *DocumentService) RemoveItem(itemID uint) (*models.SaleDocument, error) {
	var documentID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.DocumentItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		var doc models.SaleDocument
		if err := tx.First(&doc, item.DocumentID).Error; err != nil {
			return err
		}
		documentID = doc.ID
		if err := reverseDocumentItem(tx, doc.Type, &item); err != nil {
			return err
		}
		if err := tx.Delete(&models.DocumentItem{}, item.ID).Error; err != nil {
			return err
		}
		return recalcDocumentTotal(tx, doc.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(documentID)
}

// Delete removes a document, reverses every item's stock effect and
// compacts the type series so numbers stay gapless. A sale that
// already has a return cannot be deleted.
func (s *DocumentService) Delete(documentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.SaleDocument
		if err := tx.Preload("Items").First(&doc, documentID).Error; err != nil {
			return err
		}
		var returns int64
		if err := tx.Model(&models.SaleDocument{}).Where("original_sale_id = ?", doc.ID).Count(&returns).Error; err != nil {
			return err
		}
		if returns > 0 {
			return validationf(ErrReferencedEntityProtected, "cannot delete a sale that already has a return")
		}
		for i := range doc.Items {
			if err := reverseDocumentItem(tx, doc.Type, &doc.Items[i]); err != nil {
				return err
			}
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SaleDocument{}, doc.ID).Error; err != nil {
			return err
		}
		return compactSeries(tx, doc.Type, doc.Number)
	})
}
