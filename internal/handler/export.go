package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
)

// exportDefaultDays is the date range exported when ?from/?to are omitted.
const exportDefaultDays = 30

// ExportEntries handles GET /logs/export?format=csv|xlsx&from=&to=.
// Default format is csv; default range is the last 30 days.
func (s *Server) ExportEntries(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -exportDefaultDays)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			requestError(w, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			requestError(w, "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}
	if to.Before(from) {
		requestError(w, "to must not precede from")
		return
	}

	rows, err := s.export.Rows(r.Context(), driverID, from, to)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		out, err := s.export.CSV(rows)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		serveFile(w, out, "text/csv", fmt.Sprintf("log_entries_%s.csv", stamp))
	case "xlsx":
		out, err := s.export.XLSX(rows)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		serveFile(w, out,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			fmt.Sprintf("log_entries_%s.xlsx", stamp))
	default:
		requestError(w, "format must be csv or xlsx")
	}
}

// LogSheetPDF handles GET /logs/pdf/{date}: the printable daily log sheet.
func (s *Server) LogSheetPDF(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		requestError(w, "date must be YYYY-MM-DD")
		return
	}

	out, err := s.export.LogSheetPDF(r.Context(), driverID, date)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveFile(w, out, "application/pdf",
		fmt.Sprintf("daily_log_%s.pdf", date.Format("2006-01-02")))
}

func serveFile(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck — nothing useful to do once headers are written.
	w.Write(body)
}
