package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// rec builds a record from a scaled temperature.
func rec(date time.Time, hour int, season Season, tempScaled float64, cnt int) RentalRecord {
	return RentalRecord{
		Date:           date,
		Hour:           hour,
		YearCode:       YearCode(date.Year()),
		Season:         season,
		TemperatureRaw: tempScaled / TemperatureScale,
		Count:          cnt,
	}
}

func TestBandFor(t *testing.T) {
	cases := []struct {
		scaled float64
		want   TemperatureBand
	}{
		{0, BandCold},
		{24.99, BandCold},
		{25, BandWarm},
		{28, BandWarm},
		{32, BandWarm},
		{32.01, BandNormal},
		{50, BandNormal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BandFor(tc.scaled), "scaled=%v", tc.scaled)
	}
}

func TestAggregatesOfSmallSample(t *testing.T) {
	records := []RentalRecord{
		rec(day(2011, 1, 1), 5, SeasonSpring, 20, 10),
		rec(day(2011, 1, 1), 6, SeasonSpring, 40, 5),
	}

	assert.Equal(t, []DailyTotal{{Date: day(2011, 1, 1), Total: 15}}, DailyTotals(records))
	assert.Equal(t, []SeasonTotal{{Season: SeasonSpring, Label: "Spring", Total: 15}}, SeasonTotals(records))
	assert.Equal(t, []BandAverage{
		{Band: BandCold, Average: 10, Records: 1},
		{Band: BandNormal, Average: 5, Records: 1},
	}, TemperatureBandAverages(records))
	assert.Equal(t, []HourlyTotal{{Hour: 5, Total: 10}, {Hour: 6, Total: 5}}, HourlyTotals(records))
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, DailyTotals(nil))
	assert.Empty(t, SeasonTotals(nil))
	assert.Empty(t, TemperatureBandAverages(nil))
	assert.Empty(t, HourlyTotals(nil))
	assert.Zero(t, AverageHourlyTotal(nil))
	assert.Empty(t, TopHours(nil, 5))
}

func TestDailyTotalsOrderedAndConserveSum(t *testing.T) {
	records := []RentalRecord{
		rec(day(2012, 3, 2), 1, SeasonSpring, 10, 7),
		rec(day(2011, 1, 1), 2, SeasonSpring, 10, 3),
		rec(day(2012, 3, 2), 3, SeasonSpring, 10, 1),
		rec(day(2011, 6, 9), 4, SeasonSummer, 30, 11),
	}

	daily := DailyTotals(records)
	require.Len(t, daily, 3)
	assert.Equal(t, day(2011, 1, 1), daily[0].Date)
	assert.Equal(t, day(2011, 6, 9), daily[1].Date)
	assert.Equal(t, day(2012, 3, 2), daily[2].Date)

	sum := 0
	for _, d := range daily {
		sum += d.Total
	}
	assert.Equal(t, 22, sum)
}

func TestSeasonTotalsStableDescending(t *testing.T) {
	records := []RentalRecord{
		rec(day(2011, 1, 1), 0, SeasonWinter, 10, 5),
		rec(day(2011, 1, 1), 0, SeasonAutumn, 10, 9),
		rec(day(2011, 1, 1), 0, SeasonSummer, 10, 5),
		rec(day(2011, 1, 1), 0, SeasonSpring, 10, 2),
		rec(day(2011, 1, 2), 0, SeasonAutumn, 10, 1),
	}

	got := SeasonTotals(records)
	require.Len(t, got, 4)
	assert.Equal(t, "Autumn", got[0].Label)
	// Summer (2) and Winter (4) tie at 5 and keep season-code order.
	assert.Equal(t, "Summer", got[1].Label)
	assert.Equal(t, "Winter", got[2].Label)
	assert.Equal(t, "Spring", got[3].Label)

	seen := map[string]bool{}
	for _, s := range got {
		assert.Contains(t, []string{"Spring", "Summer", "Autumn", "Winter"}, s.Label)
		assert.False(t, seen[s.Label], "duplicate label %s", s.Label)
		seen[s.Label] = true
	}
}

func TestTemperatureBandAveragesOmitsEmptyBands(t *testing.T) {
	records := []RentalRecord{
		rec(day(2011, 1, 1), 0, SeasonSpring, 28, 4),
		rec(day(2011, 1, 1), 1, SeasonSpring, 25, 6),
	}

	got := TemperatureBandAverages(records)
	require.Len(t, got, 1)
	assert.Equal(t, BandWarm, got[0].Band)
	assert.InDelta(t, 5.0, got[0].Average, 1e-9)
	assert.Equal(t, 2, got[0].Records)
}

func TestTemperatureBandAveragesTieKeepsLabelOrder(t *testing.T) {
	records := []RentalRecord{
		rec(day(2011, 1, 1), 0, SeasonSpring, 40, 3),
		rec(day(2011, 1, 1), 1, SeasonSpring, 30, 3),
		rec(day(2011, 1, 1), 2, SeasonSpring, 10, 3),
	}

	got := TemperatureBandAverages(records)
	require.Len(t, got, 3)
	assert.Equal(t, []TemperatureBand{BandCold, BandNormal, BandWarm},
		[]TemperatureBand{got[0].Band, got[1].Band, got[2].Band})
}

func TestHourlyTotalsUniqueAndStable(t *testing.T) {
	var records []RentalRecord
	for h := range 24 {
		// Two passes over every hour; hours 3 and 17 get the same total.
		records = append(records, rec(day(2011, 1, 1), h, SeasonSpring, 10, h))
		records = append(records, rec(day(2011, 1, 2), h, SeasonSpring, 10, 1))
	}
	records = append(records, rec(day(2011, 1, 3), 3, SeasonSpring, 10, 14))

	got := HourlyTotals(records)
	require.Len(t, got, 24)

	hours := map[int]bool{}
	for i, h := range got {
		assert.False(t, hours[h.Hour], "duplicate hour %d", h.Hour)
		hours[h.Hour] = true
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Total, h.Total)
		}
	}

	// Hour 3 (3+1+14) ties hour 17 (17+1) at 18; the lower hour comes first.
	idx3, idx17 := -1, -1
	for i, h := range got {
		switch h.Hour {
		case 3:
			idx3 = i
		case 17:
			idx17 = i
		}
	}
	assert.Less(t, idx3, idx17)
}

func TestAverageAndTopHours(t *testing.T) {
	hourly := []HourlyTotal{{Hour: 17, Total: 10}, {Hour: 8, Total: 5}, {Hour: 2, Total: 1}}

	assert.Equal(t, 5.33, AverageHourlyTotal(hourly))
	assert.Equal(t, []HourlyTotal{{Hour: 17, Total: 10}, {Hour: 8, Total: 5}}, TopHours(hourly, 2))
	assert.Len(t, TopHours(hourly, 10), 3)
	assert.Empty(t, TopHours(hourly, -1))
}

func TestBuildDashboard(t *testing.T) {
	ds := NewDataset("v1", "memory", "abc", time.Now(), []RentalRecord{
		rec(day(2011, 1, 1), 5, SeasonSpring, 20, 10),
		rec(day(2012, 1, 1), 6, SeasonWinter, 40, 5),
	})

	v := BuildDashboard(ds, YearRange{Start: 2012, End: 2012}, 5)
	assert.Equal(t, 1, v.Records)
	assert.Equal(t, "v1", v.Dataset.ID)
	require.Len(t, v.Seasons, 1)
	assert.Equal(t, "Winter", v.Seasons[0].Label)
	assert.Equal(t, 5.0, v.AverageHourlyTotal)
	assert.Equal(t, []HourlyTotal{{Hour: 6, Total: 5}}, v.TopHours)
}
