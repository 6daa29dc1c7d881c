package models

import "time"

// Customer is a buyer: a company or a private person. Companies can
// receive invoices; everyone can appear on sale documents.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null;index"`
	IsCompany bool   `gorm:"not null;default:false;index"`
	Contact   string `gorm:"size:255"`
	CreatedAt time.Time
}
