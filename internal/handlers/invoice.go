package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
	"github.com/ivolkov/backoffice/internal/validation"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	Svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

// itemReq is the wire shape of one line item.
type itemReq struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

func (it itemReq) toInput() services.ItemInput {
	return services.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
}

type invoiceCreateReq struct {
	CustomerID uint      `json:"customer_id"`
	Date       string    `json:"date"`
	Items      []itemReq `json:"items"`
}

// List: GET /invoices; Get: GET /invoices?id=...
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := queryID(r, "id"); ok {
		inv, err := h.Svc.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inv)
		return
	}
	limit, offset := pageParams(r)
	invs, total, err := h.Svc.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /invoices – JSON, or a form without line items.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceCreateReq
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		id, ok := queryID(r, "customer_id")
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_customer_id", nil)
			return
		}
		req.CustomerID = id
		req.Date = r.FormValue("date")
	}
	v := validation.Violations{}
	validation.PositiveInt("customer_id", int(req.CustomerID), v)
	for _, it := range req.Items {
		validation.PositiveInt("product_id", int(it.ProductID), v)
		validation.PositiveInt("quantity", it.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in := services.InvoiceInput{CustomerID: req.CustomerID}
	if d := parseDate(req.Date); d != nil {
		in.Date = *d
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.toInput())
	}
	inv, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Items: POST /invoices/items (add), PUT /invoices/items?item_id=...
// (change quantity), DELETE /invoices/items?item_id=...
func (h *InvoiceHandler) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			InvoiceID uint `json:"invoice_id"`
			itemReq
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		inv, err := h.Svc.AddItem(req.InvoiceID, req.toInput())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inv)
	case http.MethodPut:
		itemID, ok := queryID(r, "item_id")
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_item_id", nil)
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		inv, err := h.Svc.UpdateItemQuantity(itemID, req.Quantity)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inv)
	case http.MethodDelete:
		itemID, ok := queryID(r, "item_id")
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_item_id", nil)
			return
		}
		inv, err := h.Svc.RemoveItem(itemID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inv)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// Pay: POST /invoices/pay?id=...
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.Svc.MarkPaid(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: POST/DELETE /invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Unpaid: GET /invoices/unpaid?customer_id=... – the cashless sale form
// lookup.
func (h *InvoiceHandler) Unpaid(w http.ResponseWriter, r *http.Request) {
	customerID, ok := queryID(r, "customer_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_customer_id", nil)
		return
	}
	invs, err := h.Svc.UnpaidByCustomer(customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs})
}
