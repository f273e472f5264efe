package rental

import (
	"slices"
	"time"
)

// Supported calendar years. The dataset stores years as codes relative to BaseYear.
const (
	BaseYear = 2011
	LastYear = 2012

	// TemperatureScale converts the normalized feeling temperature into degrees.
	TemperatureScale = 50.0
)

// Season is the dataset's season code (1..4).
type Season int

const (
	SeasonSpring Season = 1
	SeasonSummer Season = 2
	SeasonAutumn Season = 3
	SeasonWinter Season = 4
)

var seasonLabels = map[Season]string{
	SeasonSpring: "Spring",
	SeasonSummer: "Summer",
	SeasonAutumn: "Autumn",
	SeasonWinter: "Winter",
}

// Label returns the display name of the season, or "" for unknown codes.
func (s Season) Label() string {
	return seasonLabels[s]
}

// Valid reports whether s is one of the four known season codes.
func (s Season) Valid() bool {
	_, ok := seasonLabels[s]
	return ok
}

// TemperatureBand is a categorical bucket derived from the scaled temperature.
type TemperatureBand string

const (
	BandCold   TemperatureBand = "Cold"
	BandNormal TemperatureBand = "Normal"
	BandWarm   TemperatureBand = "Warm"
)

// bandOrder is the grouping order of bands (label order).
var bandOrder = []TemperatureBand{BandCold, BandNormal, BandWarm}

// BandFor classifies a scaled temperature. Values below 25 are Cold, values
// above 32 are Normal, and everything else (including both boundaries) is Warm.
func BandFor(scaled float64) TemperatureBand {
	if scaled < 25 {
		return BandCold
	}
	if scaled > 32 {
		return BandNormal
	}
	return BandWarm
}

// YearCode maps a calendar year onto the dataset's year code.
func YearCode(year int) int {
	return year - BaseYear
}

// RentalRecord is one hourly observation of the dataset.
type RentalRecord struct {
	Date           time.Time `json:"date"` // UTC midnight
	Hour           int       `json:"hour"`
	YearCode       int       `json:"yearCode"`
	Season         Season    `json:"season"`
	IsHoliday      bool      `json:"isHoliday"`
	IsWorkingDay   bool      `json:"isWorkingDay"`
	TemperatureRaw float64   `json:"temperatureRaw"`
	Count          int       `json:"count"`
}

// TemperatureScaled returns the feeling temperature in degrees.
func (r RentalRecord) TemperatureScaled() float64 {
	return r.TemperatureRaw * TemperatureScale
}

// Band returns the record's temperature band.
func (r RentalRecord) Band() TemperatureBand {
	return BandFor(r.TemperatureScaled())
}

// DatasetInfo describes one loaded dataset version.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Checksum string    `json:"checksum"`
	LoadedAt time.Time `json:"loadedAt"`
	Records  int       `json:"records"`
}

// Dataset is an immutable, loaded set of rental records.
type Dataset struct {
	info    DatasetInfo
	records []RentalRecord
}

// NewDataset takes ownership of records; callers must not modify the slice afterwards.
func NewDataset(id, source, checksum string, loadedAt time.Time, records []RentalRecord) *Dataset {
	return &Dataset{
		info: DatasetInfo{
			ID:       id,
			Source:   source,
			Checksum: checksum,
			LoadedAt: loadedAt,
			Records:  len(records),
		},
		records: records,
	}
}

// Info returns the dataset metadata.
func (d *Dataset) Info() DatasetInfo {
	return d.info
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of all records.
func (d *Dataset) Records() []RentalRecord {
	return slices.Clone(d.records)
}

// FilterYears returns the records within the inclusive calendar-year range.
func (d *Dataset) FilterYears(startYear, endYear int) []RentalRecord {
	return FilterByYearRange(d.records, startYear, endYear)
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FullRange covers every supported year.
func FullRange() YearRange {
	return YearRange{Start: BaseYear, End: LastYear}
}

// DailyTotal is the total rental count of one day.
type DailyTotal struct {
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
}

// SeasonTotal is the total rental count of one season.
type SeasonTotal struct {
	Season Season `json:"code"`
	Label  string `json:"season"`
	Total  int    `json:"total"`
}

// BandAverage is the mean hourly rental count within a temperature band.
type BandAverage struct {
	Band    TemperatureBand `json:"band"`
	Average float64         `json:"average"`
	Records int             `json:"records"`
}

// HourlyTotal is the total rental count of one hour of the day.
type HourlyTotal struct {
	Hour  int `json:"hour"`
	Total int `json:"total"`
}

// DashboardView bundles every derived table for one year range.
type DashboardView struct {
	Dataset            DatasetInfo   `json:"dataset"`
	Range              YearRange     `json:"range"`
	Records            int           `json:"records"`
	Daily              []DailyTotal  `json:"daily"`
	Seasons            []SeasonTotal `json:"seasons"`
	TemperatureBands   []BandAverage `json:"temperatureBands"`
	Hourly             []HourlyTotal `json:"hourly"`
	TopHours           []HourlyTotal `json:"topHours"`
	AverageHourlyTotal float64       `json:"averageHourlyTotal"`
}
