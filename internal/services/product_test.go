package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductCRUDAndLookup(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewProductService(conn)

	p, err := svc.Create(ProductInput{Name: "Widget", Price: decimal.RequireFromString("5.00"), Quantity: 10})
	require.NoError(t, err)

	pq, err := svc.PriceQuantity(p.ID)
	require.NoError(t, err)
	require.True(t, pq.Price.Equal(decimal.RequireFromString("5.00")))
	require.Equal(t, 10, pq.Quantity)

	p, err = svc.Update(p.ID, ProductInput{Name: "Widget v2", Price: decimal.RequireFromString("6.50"), Quantity: 8})
	require.NoError(t, err)
	require.Equal(t, 8, p.Quantity)

	_, err = svc.Update(p.ID, ProductInput{Name: "Widget v2", Price: p.Price, Quantity: -1})
	require.ErrorIs(t, err, ErrDocumentValidation, "negative stock rejected")

	list, total, err := svc.List("widget", 50, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, list, 1)
}

func TestProductDeleteProtected(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewProductService(conn)
	customer := seedCustomer(t, conn, "ООО Ромашка", true)
	product := seedProduct(t, conn, "Widget", "5.00", 10)

	invSvc := NewInvoiceService(conn)
	_, err := invSvc.Create(InvoiceInput{
		CustomerID: customer.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = svc.Delete(product.ID)
	require.ErrorIs(t, err, ErrReferencedEntityProtected)

	free := seedProduct(t, conn, "Unused", "1.00", 1)
	require.NoError(t, svc.Delete(free.ID))
}
