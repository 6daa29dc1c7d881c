package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ivolkov/backoffice/internal/models"
	"gorm.io/gorm"
)

// Document numbers are formatted <PREFIX>-<positive integer> and form
// a gapless sequence per series: one series for invoices, one per sale
// document type. The "last number" is derived by scanning the stored
// rows; callers must run inside a transaction so two writers cannot
// allocate the same number.

// parseSeq extracts the trailing integer of a stored number. Malformed
// numbers yield 0 so a single bad row never aborts allocation or
// compaction.
func parseSeq(number string) int {
	i := strings.LastIndex(number, "-")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(number[i+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func nextInvoiceNumber(tx *gorm.DB) (string, error) {
	var numbers []string
	if err := tx.Model(&models.Invoice{}).Pluck("number", &numbers).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", models.InvoicePrefix, maxSeq(numbers)+1), nil
}

func nextDocumentNumber(tx *gorm.DB, docType string) (string, error) {
	prefix, ok := models.DocPrefixes[docType]
	if !ok {
		return "", validationf(ErrDocumentValidation, "unknown document type %q", docType)
	}
	var numbers []string
	if err := tx.Model(&models.SaleDocument{}).Where("type = ?", docType).Pluck("number", &numbers).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", prefix, maxSeq(numbers)+1), nil
}

func maxSeq(numbers []string) int {
	max := 0
	for _, n := range numbers {
		if v := parseSeq(n); v > max {
			max = v
		}
	}
	return max
}

// compactSeries closes the gap left by deleting number deletedNumber
// from a sale document series: every later number M in the series is
// rewritten to M-1. Invoices are never compacted. Rows with malformed
// numbers are skipped.
func compactSeries(tx *gorm.DB, docType, deletedNumber string) error {
	prefix, ok := models.DocPrefixes[docType]
	if !ok {
		return nil
	}
	deletedSeq := parseSeq(deletedNumber)
	if deletedSeq == 0 {
		return nil
	}
	var docs []models.SaleDocument
	if err := tx.Select("id", "number").Where("type = ?", docType).Find(&docs).Error; err != nil {
		return err
	}
	type renum struct {
		id  uint
		seq int
	}
	later := make([]renum, 0, len(docs))
	for _, d := range docs {
		if seq := parseSeq(d.Number); seq > deletedSeq {
			later = append(later, renum{id: d.ID, seq: seq})
		}
	}
	// ascending order so the rewrites never collide on the unique index
	sort.Slice(later, func(i, j int) bool { return later[i].seq < later[j].seq })
	for _, r := range later {
		number := fmt.Sprintf("%s-%d", prefix, r.seq-1)
		if err := tx.Model(&models.SaleDocument{}).Where("id = ?", r.id).Update("number", number).Error; err != nil {
			return err
		}
	}
	return nil
}
