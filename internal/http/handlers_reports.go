package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"utang/internal/core"
	"utang/internal/export"
	applog "utang/internal/log"
	"utang/internal/services"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summary(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	budget, err := s.dashboard.Budget(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget.ByCategory = nonNil(budget.ByCategory)
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	strategy := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("strategy")))
	ranking, err := s.dashboard.Ranking(r.Context(), currentUser(r), strategy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ranking.Debts = nonNil(ranking.Debts)
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	horizon, err := queryInt(r, "horizon", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	projection, err := s.dashboard.Projection(r.Context(), currentUser(r), services.ProjectionRequest{
		Strategy:      strings.ToLower(strings.TrimSpace(q.Get("strategy"))),
		Allocation:    strings.ToLower(strings.TrimSpace(q.Get("allocation"))),
		HorizonMonths: horizon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	savings, err := s.dashboard.Savings(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savings)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.dashboard.Breakdown(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	breakdown.Budget = nonNil(breakdown.Budget)
	breakdown.Debts = nonNil(breakdown.Debts)
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	window, err := queryInt(r, "window", core.DefaultDueWindowDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	calendar, err := s.dashboard.Calendar(r.Context(), currentUser(r), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	calendar.Items = nonNil(calendar.Items)
	writeJSON(w, http.StatusOK, calendar)
}

// handleExportWorkbook streams the full report as an XLSX download. The body
// is built in memory first so a failure still yields a JSON error.
func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	report, err := s.dashboard.Report(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report); err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Report workbook exported",
		applog.FieldUserID, userID,
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, report.Summary.DebtCount)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(report.GeneratedAt)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
