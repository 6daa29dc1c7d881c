package server

import (
	"log"
	"net/http"
	"time"

	"github.com/ivolkov/backoffice/internal/handlers"
	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – no detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Customer endpoints. List/Create via /customers, Update/Delete via
	// /customers/update & /customers/delete for simplicity.
	ch := handlers.NewCustomerHandler(services.NewCustomerService(db))
	mux.HandleFunc("/customers", listCreate(ch.List, ch.Create))
	mux.HandleFunc("/customers/update", ch.Update)
	mux.HandleFunc("/customers/delete", ch.Delete)

	// Product endpoints, same shape plus the price/quantity lookup.
	ph := handlers.NewProductHandler(services.NewProductService(db))
	mux.HandleFunc("/products", listCreate(ph.List, ph.Create))
	mux.HandleFunc("/products/update", ph.Update)
	mux.HandleFunc("/products/delete", ph.Delete)
	mux.HandleFunc("/products/price", ph.Price)

	// Invoice endpoints
	ih := handlers.NewInvoiceHandler(services.NewInvoiceService(db))
	mux.HandleFunc("/invoices", listCreate(ih.List, ih.Create))
	mux.HandleFunc("/invoices/items", ih.Items)
	mux.HandleFunc("/invoices/pay", ih.Pay)
	mux.HandleFunc("/invoices/delete", ih.Delete)
	mux.HandleFunc("/invoices/unpaid", ih.Unpaid)

	// Sale document endpoints (journal + the three variants)
	dh := handlers.NewDocumentHandler(services.NewDocumentService(db))
	mux.HandleFunc("/documents", listCreate(dh.List, dh.Create))
	mux.HandleFunc("/documents/items", dh.Items)
	mux.HandleFunc("/documents/delete", dh.Delete)

	// Reports
	rh := handlers.NewReportHandler(services.NewReportService(db))
	mux.HandleFunc("/reports/sales", rh.Sales)
	mux.HandleFunc("/dashboard", rh.Dashboard)

	// Root placeholder
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, werr := w.Write([]byte("Backoffice API - see /health")); werr != nil {
			_ = werr
		}
	})
	//revive:enable:unused-parameter

	return withRecover(withLogging(mux))
}

func listCreate(list, create http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
