package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// ExportService renders a driver's journal as downloadable documents.
type ExportService struct {
	entries repo.EntryRepo
	logs    repo.DailyLogRepo
	drivers repo.DriverRepo

	now func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(entries repo.EntryRepo, logs repo.DailyLogRepo, drivers repo.DriverRepo) *ExportService {
	return &ExportService{
		entries: entries,
		logs:    logs,
		drivers: drivers,
		now:     time.Now,
	}
}

// ExportRow is one flattened duty-status entry. The csv tags drive both the
// CSV header and, via csvutil.Header, the XLSX column names.
type ExportRow struct {
	Date          string  `csv:"date"`
	StartTime     string  `csv:"start_time"`
	EndTime       string  `csv:"end_time"`
	DutyStatus    string  `csv:"duty_status"`
	Location      string  `csv:"location"`
	Vehicle       string  `csv:"vehicle"`
	Trailer       string  `csv:"trailer"`
	OdometerStart string  `csv:"odometer_start"`
	OdometerEnd   string  `csv:"odometer_end"`
	TotalHours    float64 `csv:"total_hours"`
	Notes         string  `csv:"notes"`
}

// Rows flattens the driver's entries for [from, to] into export rows,
// oldest first. An open entry has an empty end_time.
func (s *ExportService) Rows(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]ExportRow, error) {
	entries, err := s.entries.ListRange(ctx, driverID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Rows: %w", err)
	}

	rows := make([]ExportRow, 0, len(entries))
	for _, e := range entries {
		row := ExportRow{
			Date:          e.LogDate.Format("2006-01-02"),
			StartTime:     e.StartTime.UTC().Format(time.RFC3339),
			DutyStatus:    string(e.DutyStatus),
			Location:      e.Location,
			Vehicle:       e.VehicleInfo,
			Trailer:       e.TrailerInfo,
			OdometerStart: formatOdometer(e.OdometerStart),
			OdometerEnd:   formatOdometer(e.OdometerEnd),
			TotalHours:    e.TotalHours,
			Notes:         e.Notes,
		}
		if e.EndTime != nil {
			row.EndTime = e.EndTime.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CSV renders rows as a CSV document with a header line.
func (s *ExportService) CSV(rows []ExportRow) ([]byte, error) {
	out, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.CSV: %w", err)
	}
	return out, nil
}

// XLSX renders rows as a single-sheet workbook.
func (s *ExportService) XLSX(rows []ExportRow) ([]byte, error) {
	header, err := csvutil.Header(ExportRow{}, "csv")
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.XLSX: header: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Log Entries"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.XLSX: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("service.ExportService.XLSX: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{
			row.Date, row.StartTime, row.EndTime, row.DutyStatus, row.Location,
			row.Vehicle, row.Trailer, row.OdometerStart, row.OdometerEnd,
			row.TotalHours, row.Notes,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.XLSX: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("service.ExportService.XLSX: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.XLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}

// LogSheetPDF renders the printable daily log sheet for one date. Totals come
// from the stored daily log when one exists, otherwise they are computed from
// the entries on the fly.
func (s *ExportService) LogSheetPDF(ctx context.Context, driverID uuid.UUID, date time.Time) ([]byte, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.LogSheetPDF: %w", err)
	}

	entries, err := s.entries.ListByDate(ctx, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.LogSheetPDF: %w", err)
	}

	log, err := s.logs.GetByDate(ctx, driverID, date)
	if err != nil {
		totals := aggregateDay(entries, dayWindow(date, driver.Location()), s.now())
		log = domain.DailyLog{
			DriverID:               driverID,
			LogDate:                date,
			TotalOffDutyHours:      totals[domain.StatusOffDuty],
			TotalSleeperBerthHours: totals[domain.StatusSleeperBerth],
			TotalDrivingHours:      totals[domain.StatusDriving],
			TotalOnDutyHours:       totals[domain.StatusOnDutyNotDriving],
		}
	}

	return buildLogSheet(driver, log, entries, s.now())
}

func formatOdometer(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
