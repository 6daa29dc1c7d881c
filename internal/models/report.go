package models

import "time"

// SalesReport stores the parameters of a requested report. The report
// itself is always re-derived from the documents; only the query is
// persisted.
type SalesReport struct {
	ID         uint       `gorm:"primaryKey"`
	ReportType string     `gorm:"size:10"` // empty means all types
	StartDate  *time.Time `gorm:"type:date"`
	EndDate    *time.Time `gorm:"type:date"`
	CreatedAt  time.Time
}
