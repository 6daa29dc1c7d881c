package services

import (
	"testing"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParseSeq(t *testing.T) {
	cases := map[string]int{
		"СЧ-1":    1,
		"ТЧ-42":   42,
		"БН-007":  7,
		"garbage": 0,
		"ТЧ-":     0,
		"ТЧ-abc":  0,
		"":        0,
	}
	for in, want := range cases {
		if got := parseSeq(in); got != want {
			t.Fatalf("parseSeq(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestDocumentNumbersPerSeries(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "ООО Тест", true)

	for i, want := range []string{"ТЧ-1", "ТЧ-2", "ТЧ-3"} {
		doc, err := svc.Create(DocumentInput{
			Type:         models.DocTypeCash,
			CustomerID:   customer.ID,
			CashRegister: "1",
		})
		require.NoError(t, err, "create %d", i)
		require.Equal(t, want, doc.Number)
	}

	// The cash series does not affect invoice numbering.
	invSvc := NewInvoiceService(conn)
	inv, err := invSvc.Create(InvoiceInput{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Equal(t, "СЧ-1", inv.Number)
}

func TestDeleteCompactsSeries(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "ООО Тест", true)

	var docs []*models.SaleDocument
	for i := 0; i < 3; i++ {
		doc, err := svc.Create(DocumentInput{
			Type:         models.DocTypeCash,
			CustomerID:   customer.ID,
			CashRegister: "1",
		})
		require.NoError(t, err)
		docs = append(docs, doc)
	}

	require.NoError(t, svc.Delete(docs[1].ID)) // ТЧ-2

	first, err := svc.Get(docs[0].ID)
	require.NoError(t, err)
	require.Equal(t, "ТЧ-1", first.Number)
	third, err := svc.Get(docs[2].ID)
	require.NoError(t, err)
	require.Equal(t, "ТЧ-2", third.Number, "later number shifts down to close the gap")

	// The next allocation continues from the compacted maximum.
	doc, err := svc.Create(DocumentInput{Type: models.DocTypeCash, CustomerID: customer.ID, CashRegister: "1"})
	require.NoError(t, err)
	require.Equal(t, "ТЧ-3", doc.Number)
}

func TestCompactionSkipsMalformedNumbers(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "ООО Тест", true)

	var ids []uint
	for i := 0; i < 3; i++ {
		doc, err := svc.Create(DocumentInput{Type: models.DocTypeCash, CustomerID: customer.ID, CashRegister: "1"})
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}
	// Corrupt one row's number out-of-band.
	require.NoError(t, conn.Model(&models.SaleDocument{}).Where("id = ?", ids[0]).Update("number", "legacy").Error)

	require.NoError(t, svc.Delete(ids[1])) // ТЧ-2

	var corrupted models.SaleDocument
	require.NoError(t, conn.First(&corrupted, ids[0]).Error)
	require.Equal(t, "legacy", corrupted.Number, "malformed numbers are left alone")
	var shifted models.SaleDocument
	require.NoError(t, conn.First(&shifted, ids[2]).Error)
	require.Equal(t, "ТЧ-2", shifted.Number)
}

func TestInvoiceNumbersAreNotCompacted(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	customer := seedCustomer(t, conn, "ООО Тест", true)

	first, err := svc.Create(InvoiceInput{CustomerID: customer.ID})
	require.NoError(t, err)
	second, err := svc.Create(InvoiceInput{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Equal(t, "СЧ-2", second.Number)

	require.NoError(t, svc.Delete(first.ID))

	kept, err := svc.Get(second.ID)
	require.NoError(t, err)
	require.Equal(t, "СЧ-2", kept.Number, "invoice numbers keep their gap")
	third, err := svc.Create(InvoiceInput{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Equal(t, "СЧ-3", third.Number)
}
