package http

import (
	"log/slog"
	"net/http"
)

// handleMonthlyReport serves totals and budget lines for one calendar month,
// defaulting to the current one. Results are cached per (owner, year, month).
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	owner := ownerID(r)
	key := s.reportCacheKey(owner, year, int(month))
	if report, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "owner", owner, "year", year, "month", month)
		writeJSON(w, http.StatusOK, toMonthlyReportResponse(report))
		return
	}

	report, err := s.reports.Monthly(r.Context(), owner, year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, toMonthlyReportResponse(report))
}
