package rental

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// DailyTotals sums rental counts per date, ordered by date ascending.
func DailyTotals(records []RentalRecord) []DailyTotal {
	sums := make(map[time.Time]int)
	for _, r := range records {
		sums[r.Date] += r.Count
	}

	out := make([]DailyTotal, 0, len(sums))
	for d, total := range sums {
		out = append(out, DailyTotal{Date: d, Total: total})
	}
	slices.SortFunc(out, func(a, b DailyTotal) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// SeasonTotals sums rental counts per season, sorted by total descending.
// Equal totals keep season-code order.
func SeasonTotals(records []RentalRecord) []SeasonTotal {
	sums := make(map[Season]int)
	for _, r := range records {
		sums[r.Season] += r.Count
	}

	seasons := make([]Season, 0, len(sums))
	for s := range sums {
		seasons = append(seasons, s)
	}
	slices.Sort(seasons)

	out := make([]SeasonTotal, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, SeasonTotal{Season: s, Label: s.Label(), Total: sums[s]})
	}
	slices.SortStableFunc(out, func(a, b SeasonTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return out
}

// TemperatureBandAverages computes the mean rental count per temperature band,
// sorted by mean descending. Bands without records are omitted.
func TemperatureBandAverages(records []RentalRecord) []BandAverage {
	type acc struct {
		sum, n int
	}
	groups := make(map[TemperatureBand]*acc)
	for _, r := range records {
		b := r.Band()
		g, ok := groups[b]
		if !ok {
			g = &acc{}
			groups[b] = g
		}
		g.sum += r.Count
		g.n++
	}

	out := make([]BandAverage, 0, len(groups))
	for _, b := range bandOrder {
		g, ok := groups[b]
		if !ok || g.n == 0 {
			continue
		}
		out = append(out, BandAverage{
			Band:    b,
			Average: float64(g.sum) / float64(g.n),
			Records: g.n,
		})
	}
	slices.SortStableFunc(out, func(a, b BandAverage) int {
		return cmp.Compare(b.Average, a.Average)
	})
	return out
}

// HourlyTotals sums rental counts per hour of day, sorted by total descending.
// Equal totals keep hour order.
func HourlyTotals(records []RentalRecord) []HourlyTotal {
	var sums [24]int
	var seen [24]bool
	for _, r := range records {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		sums[r.Hour] += r.Count
		seen[r.Hour] = true
	}

	out := make([]HourlyTotal, 0, 24)
	for h := range 24 {
		if seen[h] {
			out = append(out, HourlyTotal{Hour: h, Total: sums[h]})
		}
	}
	slices.SortStableFunc(out, func(a, b HourlyTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return out
}

// AverageHourlyTotal returns the mean of the hourly totals rounded to two
// decimals, or 0 when there are none.
func AverageHourlyTotal(hourly []HourlyTotal) float64 {
	if len(hourly) == 0 {
		return 0
	}
	sum := 0
	for _, h := range hourly {
		sum += h.Total
	}
	mean := float64(sum) / float64(len(hourly))
	return math.Round(mean*100) / 100
}

// TopHours returns at most n leading entries of an already sorted hourly table.
func TopHours(hourly []HourlyTotal, n int) []HourlyTotal {
	if n < 0 {
		n = 0
	}
	if n > len(hourly) {
		n = len(hourly)
	}
	return slices.Clone(hourly[:n])
}

// BuildDashboard filters the dataset by year range and derives every table.
func BuildDashboard(ds *Dataset, yr YearRange, topN int) DashboardView {
	records := ds.FilterYears(yr.Start, yr.End)
	hourly := HourlyTotals(records)

	return DashboardView{
		Dataset:            ds.Info(),
		Range:              yr,
		Records:            len(records),
		Daily:              DailyTotals(records),
		Seasons:            SeasonTotals(records),
		TemperatureBands:   TemperatureBandAverages(records),
		Hourly:             hourly,
		TopHours:           TopHours(hourly, topN),
		AverageHourlyTotal: AverageHourlyTotal(hourly),
	}
}
