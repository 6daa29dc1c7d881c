package services

import (
	"strings"

	"github.com/ivolkov/backoffice/internal/models"
	"gorm.io/gorm"
)

// CustomerInput is the create/update payload for a customer.
type CustomerInput struct {
	Name      string
	IsCompany bool
	Contact   string
}

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService { return &CustomerService{db: db} }

func (s *CustomerService) Create(in CustomerInput) (*models.Customer, error) {
	c := models.Customer{Name: strings.TrimSpace(in.Name), IsCompany: in.IsCompany, Contact: in.Contact}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Update(id uint, in CustomerInput) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.IsCompany = in.IsCompany
	c.Contact = in.Contact
	if err := s.db.Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Get(id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) List(query string, limit, offset int) ([]models.Customer, int64, error) {
	q := s.db.Model(&models.Customer{})
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var customers []models.Customer
	err := q.Order("name asc").Limit(limit).Offset(offset).Find(&customers).Error
	return customers, total, err
}

// Delete rejects deletion while any invoice or sale document still
// references the customer.
func (s *CustomerService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		var invoices, documents int64
		if err := tx.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoices).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SaleDocument{}).Where("customer_id = ?", id).Count(&documents).Error; err != nil {
			return err
		}
		if invoices > 0 || documents > 0 {
			return validationf(ErrReferencedEntityProtected, "customer %q is referenced by invoices or sale documents", c.Name)
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
}
