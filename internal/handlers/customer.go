package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
	"github.com/ivolkov/backoffice/internal/validation"
)

type CustomerHandler struct {
	Svc *services.CustomerService
}

func NewCustomerHandler(svc *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Svc: svc}
}

// List: GET /customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	customers, total, err := h.Svc.List(q, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /customers – JSON or form
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update: POST/PUT /customers/update?id=...
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	in, okIn := h.decode(w, r)
	if !okIn {
		return
	}
	c, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete: POST/DELETE /customers/delete?id=...
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *CustomerHandler) decode(w http.ResponseWriter, r *http.Request) (services.CustomerInput, bool) {
	var in services.CustomerInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name      string `json:"name"`
			IsCompany bool   `json:"is_company"`
			Contact   string `json:"contact"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return in, false
		}
		in = services.CustomerInput{Name: body.Name, IsCompany: body.IsCompany, Contact: body.Contact}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return in, false
		}
		in = services.CustomerInput{
			Name:      r.FormValue("name"),
			IsCompany: r.FormValue("is_company") == "on" || r.FormValue("is_company") == "true" || r.FormValue("is_company") == "1",
			Contact:   r.FormValue("contact"),
		}
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return in, false
	}
	return in, true
}
