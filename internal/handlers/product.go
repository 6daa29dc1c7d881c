package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
	"github.com/ivolkov/backoffice/internal/validation"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	Svc *services.ProductService
}

func NewProductHandler(svc *services.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

// List: GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	products, total, err := h.Svc.List(q, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /products – JSON or form
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	p, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST/PUT /products/update?id=...
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	in, okIn := h.decode(w, r)
	if !okIn {
		return
	}
	p, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST/DELETE /products/delete?id=...
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Price: GET /products/price?id=... – the lookup behind the item forms.
func (h *ProductHandler) Price(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	pq, err := h.Svc.PriceQuantity(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pq)
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (services.ProductInput, bool) {
	var in services.ProductInput
	v := validation.Violations{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name     string          `json:"name"`
			Price    decimal.Decimal `json:"price"`
			Quantity int             `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return in, false
		}
		in = services.ProductInput{Name: body.Name, Price: body.Price, Quantity: body.Quantity}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return in, false
		}
		price, err := decimal.NewFromString(r.FormValue("price"))
		if err != nil {
			v["price"] = "must_be_decimal"
		}
		qty, err := strconv.Atoi(r.FormValue("quantity"))
		if err != nil {
			v["quantity"] = "must_be_integer"
		}
		in = services.ProductInput{Name: r.FormValue("name"), Price: price, Quantity: qty}
	}
	validation.Required("name", in.Name, v)
	validation.NonNegativeDecimal("price", in.Price, v)
	validation.MinInt("quantity", in.Quantity, 0, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return in, false
	}
	return in, true
}
