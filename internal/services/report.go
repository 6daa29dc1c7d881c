package services

import (
	"time"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportParams is the sales report query: optional type filter and
// inclusive, individually optional date bounds.
type ReportParams struct {
	ReportType string
	StartDate  *time.Time
	EndDate    *time.Time
}

// Report groups sale documents by type, then by calendar date within
// the type, with running totals at every level. Types appear in the
// order first encountered while scanning documents by (date, id)
// ascending; the structure is fully re-derivable from the documents.
type Report struct {
	Types      []ReportTypeGroup `json:"types"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

type ReportTypeGroup struct {
	Type  string            `json:"type"`
	Label string            `json:"label"`
	Total decimal.Decimal   `json:"total"`
	Dates []ReportDateGroup `json:"dates"`
}

type ReportDateGroup struct {
	Date      string           `json:"date"`
	Total     decimal.Decimal  `json:"total"`
	Documents []ReportDocument `json:"documents"`
}

type ReportDocument struct {
	Number   string          `json:"number"`
	Date     string          `json:"date"`
	Total    decimal.Decimal `json:"total"`
	Customer string          `json:"customer"`
}

// DashboardStats are the front-page figures. Returns are excluded from
// the sales numbers and reported separately.
type DashboardStats struct {
	SalesToday   decimal.Decimal `json:"sales_today"`
	SalesWeek    decimal.Decimal `json:"sales_week"`
	SalesMonth   decimal.Decimal `json:"sales_month"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalReturns decimal.Decimal `json:"total_returns"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

// Sales builds the grouped report and records the query parameters.
func (s *ReportService) Sales(p ReportParams) (*Report, error) {
	if p.ReportType != "" {
		if _, ok := models.DocPrefixes[p.ReportType]; !ok {
			return nil, validationf(ErrDocumentValidation, "unknown report type %q", p.ReportType)
		}
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return nil, validationf(ErrDocumentValidation, "the start date cannot be after the end date")
	}

	params := models.SalesReport{ReportType: p.ReportType, StartDate: p.StartDate, EndDate: p.EndDate}
	if err := s.db.Create(&params).Error; err != nil {
		return nil, err
	}

	q := s.db.Preload("Customer").Order("date asc, id asc")
	if p.ReportType != "" {
		q = q.Where("type = ?", p.ReportType)
	}
	if p.StartDate != nil {
		q = q.Where("date >= ?", dateOnly(*p.StartDate))
	}
	if p.EndDate != nil {
		q = q.Where("date <= ?", dateOnly(*p.EndDate))
	}
	var docs []models.SaleDocument
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}

	rep := &Report{GrandTotal: decimal.Zero}
	typeIndex := map[string]int{}
	for _, doc := range docs {
		ti, ok := typeIndex[doc.Type]
		if !ok {
			rep.Types = append(rep.Types, ReportTypeGroup{
				Type:  doc.Type,
				Label: models.DocTypeLabels[doc.Type],
				Total: decimal.Zero,
			})
			ti = len(rep.Types) - 1
			typeIndex[doc.Type] = ti
		}
		tg := &rep.Types[ti]

		day := doc.Date.Format("2006-01-02")
		// documents arrive date-ascending, so within a type a new date
		// always opens a new bucket at the end
		if len(tg.Dates) == 0 || tg.Dates[len(tg.Dates)-1].Date != day {
			tg.Dates = append(tg.Dates, ReportDateGroup{Date: day, Total: decimal.Zero})
		}
		dg := &tg.Dates[len(tg.Dates)-1]

		dg.Documents = append(dg.Documents, ReportDocument{
			Number:   doc.Number,
			Date:     day,
			Total:    doc.Total,
			Customer: doc.Customer.Name,
		})
		dg.Total = dg.Total.Add(doc.Total)
		tg.Total = tg.Total.Add(doc.Total)
		rep.GrandTotal = rep.GrandTotal.Add(doc.Total)
	}
	return rep, nil
}

// Dashboard aggregates the front-page sales figures.
func (s *ReportService) Dashboard() (*DashboardStats, error) {
	today := dateOnly(time.Now())
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	stats := &DashboardStats{}
	var err error
	if stats.SalesToday, err = s.sumTotals(s.salesBase().Where("date = ?", today)); err != nil {
		return nil, err
	}
	if stats.SalesWeek, err = s.sumTotals(s.salesBase().Where("date >= ?", weekAgo)); err != nil {
		return nil, err
	}
	if stats.SalesMonth, err = s.sumTotals(s.salesBase().Where("date >= ?", monthAgo)); err != nil {
		return nil, err
	}
	if stats.TotalSales, err = s.sumTotals(s.salesBase()); err != nil {
		return nil, err
	}
	if stats.TotalReturns, err = s.sumTotals(s.db.Model(&models.SaleDocument{}).Where("type = ?", models.DocTypeReturn)); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ReportService) salesBase() *gorm.DB {
	return s.db.Model(&models.SaleDocument{}).Where("type <> ?", models.DocTypeReturn)
}

func (s *ReportService) sumTotals(q *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(total), 0)").Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
