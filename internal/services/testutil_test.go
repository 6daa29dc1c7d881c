package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/ivolkov/backoffice/internal/db"
	"github.com/ivolkov/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedCustomer(t *testing.T, conn *gorm.DB, name string, isCompany bool) *models.Customer {
	t.Helper()
	c := models.Customer{Name: name, IsCompany: isCompany}
	require.NoError(t, conn.Create(&c).Error)
	return &c
}

func seedProduct(t *testing.T, conn *gorm.DB, name, price string, quantity int) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: quantity}
	require.NoError(t, conn.Create(&p).Error)
	return &p
}

func productQuantity(t *testing.T, conn *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, conn.First(&p, id).Error)
	return p.Quantity
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
