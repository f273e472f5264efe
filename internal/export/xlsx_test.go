package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

func sampleView() rental.DashboardView {
	return rental.DashboardView{
		Dataset: rental.DatasetInfo{ID: "v1", Source: "hour.csv"},
		Range:   rental.YearRange{Start: 2011, End: 2012},
		Records: 2,
		Daily: []rental.DailyTotal{
			{Date: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), Total: 15},
		},
		Seasons:          []rental.SeasonTotal{{Season: rental.SeasonSpring, Label: "Spring", Total: 15}},
		TemperatureBands: []rental.BandAverage{{Band: rental.BandCold, Average: 10, Records: 1}},
		Hourly:           []rental.HourlyTotal{{Hour: 5, Total: 10}, {Hour: 6, Total: 5}},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDaily, SheetSeasons, SheetTemperature, SheetHourly, SheetSummary}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "date", cell(SheetDaily, "A1"))
	assert.Equal(t, "2011-01-01", cell(SheetDaily, "A2"))
	assert.Equal(t, "15", cell(SheetDaily, "B2"))
	assert.Equal(t, "Spring", cell(SheetSeasons, "A2"))
	assert.Equal(t, "Cold", cell(SheetTemperature, "A2"))
	assert.Equal(t, "6", cell(SheetHourly, "A3"))
	assert.Equal(t, "v1", cell(SheetSummary, "B1"))
}

func TestExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	path, err := ExportFile(dir, sampleView(), at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rentals-2011-2012-20240506T070809Z.xlsx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
