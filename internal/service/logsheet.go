package service

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
)

// buildLogSheet renders the printable daily log: driver header, per-status
// hour summary, the day's entries, and the certification line. generatedAt
// stamps the footer and the document metadata, so output for a fixed clock is
// byte-for-byte reproducible.
func buildLogSheet(driver domain.Driver, log domain.DailyLog, entries []domain.LogEntry, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// The core fonts are cp1252; user-entered text (names, locations) can
	// carry runes outside it and must go through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Driver's Daily Log", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, log.LogDate.Format("Monday, January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	writeHeaderLine(pdf, tr, "Driver", driver.Name)
	writeHeaderLine(pdf, tr, "License", driver.LicenseNumber)
	writeHeaderLine(pdf, tr, "Carrier", driver.Company)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Hours Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	summary := []struct {
		label string
		hours float64
	}{
		{domain.StatusOffDuty.Label(), log.TotalOffDutyHours},
		{domain.StatusSleeperBerth.Label(), log.TotalSleeperBerthHours},
		{domain.StatusDriving.Label(), log.TotalDrivingHours},
		{domain.StatusOnDutyNotDriving.Label(), log.TotalOnDutyHours},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f h", row.hours), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, fmt.Sprintf("%.2f h", log.TotalHours()), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Duty Status Entries", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(25, 6, "From", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "To", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 6, "Status", "1", 0, "L", false, 0, "")
	pdf.CellFormat(75, 6, "Location", "1", 1, "L", false, 0, "")

	loc := driver.Location()
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		end := tr("—")
		if e.EndTime != nil {
			end = e.EndTime.In(loc).Format("15:04")
		}
		pdf.CellFormat(25, 6, e.StartTime.In(loc).Format("15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, end, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, e.DutyStatus.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(75, 6, tr(truncate(e.Location, 48)), "1", 1, "L", false, 0, "")
	}
	if len(entries) == 0 {
		pdf.CellFormat(170, 6, "No entries recorded", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 9)
	if log.IsCertified && log.CertifiedAt != nil {
		pdf.MultiCell(0, 5, fmt.Sprintf(
			"I hereby certify that my data entries and my record of duty status for this 24-hour period are true and correct. Certified on %s.",
			log.CertifiedAt.In(loc).Format("January 2, 2006 at 15:04 MST")), "", "L", false)
	} else {
		pdf.MultiCell(0, 5, "This record of duty status has not yet been certified by the driver.", "", "L", false)
	}

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Generated "+generatedAt.UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("service: render log sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeaderLine(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		value = "—"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(25, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

// truncate shortens s to at most n runes, replacing the tail with an
// ellipsis. Counting runes rather than bytes keeps multibyte characters
// intact.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
