package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/models"
	"github.com/ivolkov/backoffice/internal/services"
	"github.com/ivolkov/backoffice/internal/validation"
	"github.com/shopspring/decimal"
)

type DocumentHandler struct {
	Svc *services.DocumentService
}

func NewDocumentHandler(svc *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{Svc: svc}
}

type docCreateReq struct {
	Type           string           `json:"type"`
	CustomerID     uint             `json:"customer_id"`
	Date           string           `json:"date"`
	InvoiceID      *uint            `json:"invoice_id,omitempty"`
	CashRegister   string           `json:"cash_register,omitempty"`
	OriginalSaleID *uint            `json:"original_sale_id,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Total          *decimal.Decimal `json:"total,omitempty"`
	Items          []itemReq        `json:"items"`
}

// List: GET /documents – the journal; Get: GET /documents?id=...
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := queryID(r, "id"); ok {
		doc, err := h.Svc.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
		return
	}
	limit, offset := pageParams(r)
	f := services.JournalFilter{
		Type:      r.URL.Query().Get("type"),
		StartDate: parseDate(r.URL.Query().Get("start_date")),
		EndDate:   parseDate(r.URL.Query().Get("end_date")),
		Customer:  r.URL.Query().Get("customer"),
		Limit:     limit,
		Offset:    offset,
	}
	if f.Type != "" {
		if _, ok := models.DocPrefixes[f.Type]; !ok {
			httpx.JSONError(w, http.StatusBadRequest, "unknown_document_type", nil)
			return
		}
	}
	docs, total, err := h.Svc.List(f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_documents", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /documents – JSON only; the three variants share the
// endpoint and are told apart by type.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req docCreateReq
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
		customerID, ok := queryID(r, "customer_id")
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_customer_id", nil)
			return
		}
		req.Type = r.FormValue("type")
		req.CustomerID = customerID
		req.Date = r.FormValue("date")
		req.CashRegister = r.FormValue("cash_register")
		req.Reason = r.FormValue("reason")
		if id, ok := queryID(r, "invoice_id"); ok {
			req.InvoiceID = &id
		}
		if id, ok := queryID(r, "original_sale_id"); ok {
			req.OriginalSaleID = &id
		}
	}
	v := validation.Violations{}
	validation.Required("type", req.Type, v)
	validation.PositiveInt("customer_id", int(req.CustomerID), v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in := services.DocumentInput{
		Type:           req.Type,
		CustomerID:     req.CustomerID,
		InvoiceID:      req.InvoiceID,
		CashRegister:   req.CashRegister,
		OriginalSaleID: req.OriginalSaleID,
		Reason:         req.Reason,
		Total:          req.Total,
	}
	if d := parseDate(req.Date); d != nil {
		in.Date = *d
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.toInput())
	}
	doc, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// Items: POST /documents/items (add), PUT /documents/items?item_id=...
// (change quantity), DELETE /documents/items?item_id=...
func (h *DocumentHandler) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			DocumentID uint `json:"document_id"`
			itemReq
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		doc, err := h.Svc.AddItem(req.DocumentID, req.toInput())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
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
		doc, err := h.Svc.UpdateItemQuantity(itemID, req.Quantity)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		itemID, ok := queryID(r, "item_id")
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_item_id", nil)
			return
		}
		doc, err := h.Svc.RemoveItem(itemID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// Delete: POST/DELETE /documents/delete?id=... – triggers series
// compaction.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
