// Package export writes dashboard views to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

// Sheet names, in workbook order.
const (
	SheetDaily       = "Daily"
	SheetSeasons     = "Seasons"
	SheetTemperature = "Temperature"
	SheetHourly      = "Hourly"
	SheetSummary     = "Summary"
)

const dateLayout = "2006-01-02"

// WriteWorkbook writes one sheet per derived table plus a summary sheet.
func WriteWorkbook(w io.Writer, view rental.DashboardView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDaily); err != nil {
		return err
	}
	for _, name := range []string{SheetSeasons, SheetTemperature, SheetHourly, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	daily := [][]interface{}{{"date", "total"}}
	for _, d := range view.Daily {
		daily = append(daily, []interface{}{d.Date.Format(dateLayout), d.Total})
	}

	seasons := [][]interface{}{{"season", "total"}}
	for _, s := range view.Seasons {
		seasons = append(seasons, []interface{}{s.Label, s.Total})
	}

	bands := [][]interface{}{{"band", "average", "records"}}
	for _, b := range view.TemperatureBands {
		bands = append(bands, []interface{}{string(b.Band), b.Average, b.Records})
	}

	hourly := [][]interface{}{{"hour", "total"}}
	for _, h := range view.Hourly {
		hourly = append(hourly, []interface{}{h.Hour, h.Total})
	}

	summary := [][]interface{}{
		{"dataset", view.Dataset.ID},
		{"source", view.Dataset.Source},
		{"start year", view.Range.Start},
		{"end year", view.Range.End},
		{"records", view.Records},
		{"average per hour", view.AverageHourlyTotal},
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetDaily:       daily,
		SheetSeasons:     seasons,
		SheetTemperature: bands,
		SheetHourly:      hourly,
		SheetSummary:     summary,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// FileName is the export file name for a view produced at t.
func FileName(view rental.DashboardView, t time.Time) string {
	return fmt.Sprintf("rentals-%d-%d-%s.xlsx", view.Range.Start, view.Range.End, t.UTC().Format("20060102T150405Z"))
}

// ExportFile writes view into dir and returns the created path.
func ExportFile(dir string, view rental.DashboardView, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(view, t))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := WriteWorkbook(out, view); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return path, nil
}
