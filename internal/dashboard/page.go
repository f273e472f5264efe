// Package dashboard renders a dashboard view as a self-contained HTML page.
package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

const (
	chartWidth  = 960
	chartHeight = 240
)

type bar struct {
	Label   string
	Value   string
	Percent float64
}

type line struct {
	Points      string
	Width       int
	Height      int
	First, Last string
	Max         string
}

type page struct {
	Title     string
	Range     rental.YearRange
	MinYear   int
	MaxYear   int
	DatasetID string
	LoadedAt  string
	Records   string
	Daily     line
	Seasons   []bar
	Bands     []bar
	TopHours  []bar
	Average   string
}

// Render writes the dashboard page for view.
func Render(w io.Writer, view rental.DashboardView) error {
	return pageTmpl.Execute(w, newPage(view))
}

func newPage(view rental.DashboardView) page {
	p := message.NewPrinter(language.English)

	seasons := make([]bar, 0, len(view.Seasons))
	maxSeason := 0
	for _, s := range view.Seasons {
		maxSeason = max(maxSeason, s.Total)
	}
	for _, s := range view.Seasons {
		seasons = append(seasons, bar{
			Label:   s.Label,
			Value:   p.Sprintf("%d", s.Total),
			Percent: percent(float64(s.Total), float64(maxSeason)),
		})
	}

	bands := make([]bar, 0, len(view.TemperatureBands))
	maxBand := 0.0
	for _, b := range view.TemperatureBands {
		maxBand = max(maxBand, b.Average)
	}
	for _, b := range view.TemperatureBands {
		bands = append(bands, bar{
			Label:   string(b.Band),
			Value:   p.Sprintf("%.2f", b.Average),
			Percent: percent(b.Average, maxBand),
		})
	}

	hours := make([]bar, 0, len(view.TopHours))
	maxHour := 0
	for _, h := range view.TopHours {
		maxHour = max(maxHour, h.Total)
	}
	for _, h := range view.TopHours {
		hours = append(hours, bar{
			Label:   fmt.Sprintf("%02d:00", h.Hour),
			Value:   p.Sprintf("%d", h.Total),
			Percent: percent(float64(h.Total), float64(maxHour)),
		})
	}

	loaded := ""
	if !view.Dataset.LoadedAt.IsZero() {
		loaded = view.Dataset.LoadedAt.Format("2006-01-02 15:04 MST")
	}

	return page{
		Title:     "Bike Rental Dashboard",
		Range:     view.Range,
		MinYear:   rental.BaseYear,
		MaxYear:   rental.LastYear,
		DatasetID: view.Dataset.ID,
		LoadedAt:  loaded,
		Records:   p.Sprintf("%d", view.Records),
		Daily:     dailyLine(p, view.Daily),
		Seasons:   seasons,
		Bands:     bands,
		TopHours:  hours,
		Average:   p.Sprintf("%.2f", view.AverageHourlyTotal),
	}
}

// dailyLine scales daily totals into SVG polyline points.
func dailyLine(p *message.Printer, daily []rental.DailyTotal) line {
	l := line{Width: chartWidth, Height: chartHeight}
	if len(daily) == 0 {
		return l
	}

	peak := 0
	for _, d := range daily {
		peak = max(peak, d.Total)
	}

	var sb strings.Builder
	for i, d := range daily {
		x := float64(chartWidth) / 2
		if len(daily) > 1 {
			x = float64(i) * float64(chartWidth) / float64(len(daily)-1)
		}
		y := float64(chartHeight)
		if peak > 0 {
			y -= float64(d.Total) / float64(peak) * float64(chartHeight)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	l.Points = sb.String()
	l.First = daily[0].Date.Format("2006-01-02")
	l.Last = daily[len(daily)-1].Date.Format("2006-01-02")
	l.Max = p.Sprintf("%d", peak)
	return l
}

func percent(v, peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	return float64(int(v/peak*1000)) / 10
}
