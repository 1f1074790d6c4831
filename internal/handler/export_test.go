package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

func TestExportEntries_CSVDefault(t *testing.T) {
	export := &mockExportServicer{
		rows: func(_ context.Context, _ uuid.UUID, from, to time.Time) ([]service.ExportRow, error) {
			assert.True(t, from.Before(to))
			return []service.ExportRow{{Date: "2025-03-12", DutyStatus: "driving"}}, nil
		},
		csv: func(rows []service.ExportRow) ([]byte, error) {
			require.Len(t, rows, 1)
			return []byte("date,duty_status\n2025-03-12,driving\n"), nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, nil, export)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/export", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "2025-03-12,driving")
}

func TestExportEntries_ExplicitRangeAndXLSX(t *testing.T) {
	export := &mockExportServicer{
		rows: func(_ context.Context, _ uuid.UUID, from, to time.Time) ([]service.ExportRow, error) {
			assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), from.UTC())
			assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), to.UTC())
			return nil, nil
		},
		xlsx: func([]service.ExportRow) ([]byte, error) {
			return []byte("PK\x03\x04"), nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, nil, export)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/export?format=xlsx&from=2025-03-01&to=2025-03-12", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
}

func TestExportEntries_UnknownFormat(t *testing.T) {
	export := &mockExportServicer{
		rows: func(context.Context, uuid.UUID, time.Time, time.Time) ([]service.ExportRow, error) {
			return nil, nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, nil, export)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/export?format=docx", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExportEntries_ReversedRange(t *testing.T) {
	ts := newTestServer(nil, nil, nil, nil, nil, &mockExportServicer{})
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/export?from=2025-03-12&to=2025-03-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogSheetPDF(t *testing.T) {
	export := &mockExportServicer{
		logSheetPDF: func(_ context.Context, driverID uuid.UUID, date time.Time) ([]byte, error) {
			assert.Equal(t, testDriverID, driverID)
			assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), date.UTC())
			return []byte("%PDF-1.4 stub"), nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, nil, export)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/pdf/2025-03-12", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "daily_log_2025-03-12.pdf")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 stub", string(body))
}

func TestLogSheetPDF_BadDate(t *testing.T) {
	ts := newTestServer(nil, nil, nil, nil, nil, &mockExportServicer{})
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/logs/pdf/march-12", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
