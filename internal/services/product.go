package services

import (
	"strings"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// PriceQuantity is the read-only lookup the item forms use to prefill
// price and show availability.
type PriceQuantity struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService { return &ProductService{db: db} }

func (s *ProductService) Create(in ProductInput) (*models.Product, error) {
	if in.Quantity < 0 {
		return nil, validationf(ErrDocumentValidation, "product quantity cannot be negative")
	}
	p := models.Product{Name: strings.TrimSpace(in.Name), Price: in.Price, Quantity: in.Quantity}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Update(id uint, in ProductInput) (*models.Product, error) {
	if in.Quantity < 0 {
		return nil, validationf(ErrDocumentValidation, "product quantity cannot be negative")
	}
	var p models.Product
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Quantity = in.Quantity
	if err := s.db.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Get(id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) List(query string, limit, offset int) ([]models.Product, int64, error) {
	q := s.db.Model(&models.Product{})
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := q.Order("name asc").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, err
}

// PriceQuantity returns the current price and available quantity of a
// product, the lookup behind the item form.
func (s *ProductService) PriceQuantity(id uint) (*PriceQuantity, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &PriceQuantity{Price: p.Price, Quantity: p.Quantity}, nil
}

// Delete rejects deletion while any line item still references the
// product.
func (s *ProductService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		var invoiceLines, documentLines int64
		if err := tx.Model(&models.InvoiceItem{}).Where("product_id = ?", id).Count(&invoiceLines).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DocumentItem{}).Where("product_id = ?", id).Count(&documentLines).Error; err != nil {
			return err
		}
		if invoiceLines > 0 || documentLines > 0 {
			return validationf(ErrReferencedEntityProtected, "product %q is referenced by line items", p.Name)
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}
