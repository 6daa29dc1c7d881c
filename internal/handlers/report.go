package handlers

import (
	"net/http"

	"github.com/ivolkov/backoffice/internal/httpx"
	"github.com/ivolkov/backoffice/internal/services"
)

type ReportHandler struct {
	Svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

// Sales: GET /reports/sales?type=...&start_date=...&end_date=...
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	p := services.ReportParams{
		ReportType: r.URL.Query().Get("type"),
		StartDate:  parseDate(r.URL.Query().Get("start_date")),
		EndDate:    parseDate(r.URL.Query().Get("end_date")),
	}
	rep, err := h.Svc.Sales(p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

// Dashboard: GET /dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	stats, err := h.Svc.Dashboard()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
