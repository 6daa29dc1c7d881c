package services

import (
	"testing"

	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// The full cash-sale-and-return flow: sell, shrink the line, return
// part of it, and verify numbering, totals and stock at every step.
func TestCashSaleAndReturnFlow(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)
	widget := seedProduct(t, conn, "Widget", "5.00", 10)

	sale, err := svc.Create(DocumentInput{
		Type:         models.DocTypeCash,
		CustomerID:   customer.ID,
		CashRegister: "КА-1",
		Items:        []ItemInput{{ProductID: widget.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, "ТЧ-1", sale.Number)
	require.True(t, sale.Total.Equal(decimal.RequireFromString("15.00")))
	require.Equal(t, 7, productQuantity(t, conn, widget.ID))

	// Shrink the line from 3 to 2: one unit goes back to stock.
	require.Len(t, sale.Items, 1)
	sale, err = svc.UpdateItemQuantity(sale.Items[0].ID, 2)
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(decimal.RequireFromString("10.00")))
	require.Equal(t, 8, productQuantity(t, conn, widget.ID))

	// Return one of the two sold units.
	ret, err := svc.Create(DocumentInput{
		Type:           models.DocTypeReturn,
		CustomerID:     customer.ID,
		OriginalSaleID: &sale.ID,
		Reason:         "брак",
		Items:          []ItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, "ВР-1", ret.Number)
	require.True(t, ret.Total.Equal(decimal.RequireFromString("5.00")))
	require.Equal(t, 9, productQuantity(t, conn, widget.ID))

	// A second return for the same sale is rejected.
	_, err = svc.Create(DocumentInput{
		Type:           models.DocTypeReturn,
		CustomerID:     customer.ID,
		OriginalSaleID: &sale.ID,
		Items:          []ItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDocumentValidation)

	// And the sale itself is now protected against deletion.
	err = svc.Delete(sale.ID)
	require.ErrorIs(t, err, ErrReferencedEntityProtected)
	require.Equal(t, 9, productQuantity(t, conn, widget.ID))
}

func TestCashSaleRequiresRegister(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)

	_, err := svc.Create(DocumentInput{Type: models.DocTypeCash, CustomerID: customer.ID})
	require.ErrorIs(t, err, ErrDocumentValidation)
}

func TestCashlessSaleRequiresPaidInvoice(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	invSvc := NewInvoiceService(conn)
	customer := seedCustomer(t, conn, "ООО Ромашка", true)

	_, err := svc.Create(DocumentInput{Type: models.DocTypeCashless, CustomerID: customer.ID})
	require.ErrorIs(t, err, ErrDocumentValidation, "missing invoice")

	inv, err := invSvc.Create(InvoiceInput{CustomerID: customer.ID})
	require.NoError(t, err)
	_, err = svc.Create(DocumentInput{Type: models.DocTypeCashless, CustomerID: customer.ID, InvoiceID: &inv.ID})
	require.ErrorIs(t, err, ErrDocumentValidation, "unpaid invoice")
}

func TestUnknownDocumentTypeRejected(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)

	_, err := svc.Create(DocumentInput{Type: "barter", CustomerID: customer.ID})
	require.ErrorIs(t, err, ErrDocumentValidation)
}

func TestReturnValidations(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)
	other := seedCustomer(t, conn, "Петров П.П.", false)
	widget := seedProduct(t, conn, "Widget", "5.00", 10)
	gadget := seedProduct(t, conn, "Gadget", "2.00", 10)

	sale, err := svc.Create(DocumentInput{
		Type:         models.DocTypeCash,
		CustomerID:   customer.ID,
		CashRegister: "1",
		Items:        []ItemInput{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Customer must match the original sale.
	_, err = svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: other.ID, OriginalSaleID: &sale.ID,
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDocumentValidation)

	// Product must appear on the original sale.
	_, err = svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: customer.ID, OriginalSaleID: &sale.ID,
		Items: []ItemInput{{ProductID: gadget.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidReturnItem)

	// Quantity must not exceed the originally sold quantity.
	_, err = svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: customer.ID, OriginalSaleID: &sale.ID,
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 3}},
	})
	require.ErrorIs(t, err, ErrInvalidReturnItem)

	// A return cannot reference another return.
	ret, err := svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: customer.ID, OriginalSaleID: &sale.ID,
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: customer.ID, OriginalSaleID: &ret.ID,
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDocumentValidation)
}

func TestDeleteSaleReversesStock(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)
	widget := seedProduct(t, conn, "Widget", "5.00", 10)

	sale, err := svc.Create(DocumentInput{
		Type: models.DocTypeCash, CustomerID: customer.ID, CashRegister: "1",
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, productQuantity(t, conn, widget.ID))

	require.NoError(t, svc.Delete(sale.ID))
	require.Equal(t, 10, productQuantity(t, conn, widget.ID))
	var items int64
	require.NoError(t, conn.Model(&models.DocumentItem{}).Count(&items).Error)
	require.Zero(t, items)
}

func TestDeleteReturnMayFailWhenGoodsResold(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	customer := seedCustomer(t, conn, "Иванов И.И.", false)
	widget := seedProduct(t, conn, "Widget", "5.00", 2)

	sale, err := svc.Create(DocumentInput{
		Type: models.DocTypeCash, CustomerID: customer.ID, CashRegister: "1",
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	ret, err := svc.Create(DocumentInput{
		Type: models.DocTypeReturn, CustomerID: customer.ID, OriginalSaleID: &sale.ID,
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, productQuantity(t, conn, widget.ID))

	// The returned units get sold again; deleting the return would now
	// push stock negative, so it fails.
	_, err = svc.Create(DocumentInput{
		Type: models.DocTypeCash, CustomerID: customer.ID, CashRegister: "1",
		Items: []ItemInput{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	err = svc.Delete(ret.ID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 0, productQuantity(t, conn, widget.ID))
}

func TestJournalFilters(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDocumentService(conn)
	romashka := seedCustomer(t, conn, "Romashka LLC", true)
	ivanov := seedCustomer(t, conn, "Ivanov I.I.", false)
	widget := seedProduct(t, conn, "Widget", "5.00", 100)

	mk := func(docType string, customerID uint, date string, extra func(*DocumentInput)) *models.SaleDocument {
		in := DocumentInput{
			Type:       docType,
			CustomerID: customerID,
			Date:       day(date),
			Items:      []ItemInput{{ProductID: widget.ID, Quantity: 1}},
		}
		if extra != nil {
			extra(&in)
		}
		doc, err := svc.Create(in)
		require.NoError(t, err)
		return doc
	}
	cash := func(in *DocumentInput) { in.CashRegister = "1" }

	mk(models.DocTypeCash, ivanov.ID, "2026-08-01", cash)
	mk(models.DocTypeCash, romashka.ID, "2026-08-02", cash)
	sale := mk(models.DocTypeCash, ivanov.ID, "2026-08-03", cash)
	mk(models.DocTypeReturn, ivanov.ID, "2026-08-04", func(in *DocumentInput) { in.OriginalSaleID = &sale.ID })

	docs, total, err := svc.List(JournalFilter{Type: models.DocTypeCash})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, docs, 3)
	require.Equal(t, "2026-08-03", docs[0].Date.Format("2006-01-02"), "newest date first")

	start, end := day("2026-08-02"), day("2026-08-03")
	_, total, err = svc.List(JournalFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	docs, total, err = svc.List(JournalFilter{Customer: "Romashka"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, romashka.ID, docs[0].CustomerID)
}
