package services

import (
	"errors"

	"github.com/ivolkov/backoffice/internal/models"
	"gorm.io/gorm"
)

// Stock adjustment rule. Product.Quantity is the single source of
// truth for sale eligibility and must never go negative; every helper
// here runs inside the caller's transaction so the read-modify-write
// cannot lose updates.

// debitStock removes qty units from the product. Returns the product
// as loaded (price snapshot source for new lines). Fails with
// ErrInsufficientStock when the product would go negative.
func debitStock(tx *gorm.DB, productID uint, qty int) (*models.Product, error) {
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		return nil, err
	}
	if qty > p.Quantity {
		return nil, validationf(ErrInsufficientStock, "product %q: available %d, requested %d", p.Name, p.Quantity, qty)
	}
	p.Quantity -= qty
	if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("quantity", p.Quantity).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// creditStock adds qty units back to the product.
func creditStock(tx *gorm.DB, productID uint, qty int) (*models.Product, error) {
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		return nil, err
	}
	p.Quantity += qty
	if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("quantity", p.Quantity).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// validateReturnItem checks that the product appears on the original
// sale and that qty does not exceed the originally sold quantity.
func validateReturnItem(tx *gorm.DB, originalSaleID, productID uint, qty int) error {
	var orig models.DocumentItem
	err := tx.Where("document_id = ? AND product_id = ?", originalSaleID, productID).First(&orig).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return validationf(ErrInvalidReturnItem, "product %d is not part of the original sale", productID)
	}
	if err != nil {
		return err
	}
	if qty > orig.Quantity {
		return validationf(ErrInvalidReturnItem, "at most %d units can be returned", orig.Quantity)
	}
	return nil
}
