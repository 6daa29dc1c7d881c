package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
	"gorm.io/gorm"
)

// writeServiceError maps the business error taxonomy onto HTTP
// statuses. Validation failures carry their human-readable reason in
// the details field; nothing is retried.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	var details any
	if errors.As(err, &verr) {
		details = verr.Details
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrReferencedEntityProtected):
		httpx.JSONError(w, http.StatusConflict, "referenced_entity_protected", details)
	case errors.Is(err, services.ErrInsufficientStock):
		httpx.JSONError(w, http.StatusBadRequest, "insufficient_stock", details)
	case errors.Is(err, services.ErrInvalidReturnItem):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_return_item", details)
	case errors.Is(err, services.ErrDocumentValidation):
		httpx.JSONError(w, http.StatusBadRequest, "document_validation_failed", details)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// queryID reads a positive id from the query string or form body.
func queryID(r *http.Request, name string) (uint, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = r.FormValue(name)
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// pageParams parses limit/page query parameters with the usual caps.
func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// parseDate parses a YYYY-MM-DD value; empty or malformed input yields
// nil (the filter is simply not applied, as the original UI did).
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
