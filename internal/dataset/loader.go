package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

var (
	// ErrSchema is returned when the file cannot be read as a table with the expected columns.
	ErrSchema = errors.New("dataset schema mismatch")
	// ErrInvalidRow is returned when one or more rows hold out-of-range or unparsable values.
	ErrInvalidRow = errors.New("invalid dataset row")
)

// Source column names. dteday is renamed to date on load; instant is discarded.
const (
	colIndex      = "instant"
	colSourceDate = "dteday"
	colDate       = "date"
	colSeason     = "season"
	colYear       = "yr"
	colHour       = "hr"
	colHoliday    = "holiday"
	colWorkingDay = "workingday"
	colFeelTemp   = "atemp"
	colCount      = "cnt"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{
	colDate, colSeason, colYear, colHour, colHoliday, colWorkingDay, colFeelTemp, colCount,
}

// CSVLoader reads hourly rental CSV files from a Source.
type CSVLoader struct {
	source Source
	now    func() time.Time
}

// NewCSVLoader creates a loader for src.
func NewCSVLoader(src Source) *CSVLoader {
	return &CSVLoader{
		source: src,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *CSVLoader) Name() string {
	return l.source.Name()
}

// Load reads and validates the whole file and returns it as a new dataset version.
func (l *CSVLoader) Load(ctx context.Context) (*rental.Dataset, error) {
	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	records, err := ParseCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(raw)
	return rental.NewDataset(
		uuid.NewString(),
		l.source.Name(),
		hex.EncodeToString(sum[:]),
		l.now(),
		records,
	), nil
}

// ParseCSV parses an hourly rental table. Every row is validated; all row
// failures are reported together.
func ParseCSV(r io.Reader) ([]rental.RentalRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, df.Err)
	}

	df, err := normalizeColumns(df)
	if err != nil {
		return nil, err
	}

	cols := make(map[string][]string, len(requiredColumns))
	for _, name := range requiredColumns {
		cols[name] = df.Col(name).Records()
	}

	var result *multierror.Error
	records := make([]rental.RentalRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		rec, err := parseRow(cols, i)
		if err != nil {
			// Line numbers are 1-based and the header takes line 1.
			result = multierror.Append(result, fmt.Errorf("line %d: %w", i+2, err))
			continue
		}
		records = append(records, rec)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}
	return records, nil
}

// normalizeColumns drops the row index, renames the source date column and
// checks that every required column is present.
func normalizeColumns(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()

	if slices.Contains(names, colIndex) {
		df = df.Drop(colIndex)
	}
	if slices.Contains(names, colSourceDate) && !slices.Contains(names, colDate) {
		df = df.Rename(colDate, colSourceDate)
	}
	if df.Err != nil {
		return df, fmt.Errorf("%w: %v", ErrSchema, df.Err)
	}

	names = df.Names()
	var missing []string
	for _, c := range requiredColumns {
		if !slices.Contains(names, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return df, fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}
	return df, nil
}

func parseRow(cols map[string][]string, i int) (rental.RentalRecord, error) {
	var r rental.RentalRecord

	date, err := time.Parse(dateLayout, strings.TrimSpace(cols[colDate][i]))
	if err != nil {
		return r, fmt.Errorf("%s: %w", colDate, err)
	}
	r.Date = date

	season, err := parseInt(cols, colSeason, i)
	if err != nil {
		return r, err
	}
	r.Season = rental.Season(season)
	if !r.Season.Valid() {
		return r, fmt.Errorf("%s: %d out of range 1..4", colSeason, season)
	}

	if r.YearCode, err = parseInt(cols, colYear, i); err != nil {
		return r, err
	}
	if maxCode := rental.YearCode(rental.LastYear); r.YearCode < 0 || r.YearCode > maxCode {
		return r, fmt.Errorf("%s: %d out of range 0..%d", colYear, r.YearCode, maxCode)
	}

	if r.Hour, err = parseInt(cols, colHour, i); err != nil {
		return r, err
	}
	if r.Hour < 0 || r.Hour > 23 {
		return r, fmt.Errorf("%s: %d out of range 0..23", colHour, r.Hour)
	}

	if r.IsHoliday, err = parseBool(cols, colHoliday, i); err != nil {
		return r, err
	}
	if r.IsWorkingDay, err = parseBool(cols, colWorkingDay, i); err != nil {
		return r, err
	}

	temp, err := strconv.ParseFloat(strings.TrimSpace(cols[colFeelTemp][i]), 64)
	if err != nil {
		return r, fmt.Errorf("%s: %w", colFeelTemp, err)
	}
	if math.IsNaN(temp) || temp < 0 || temp > 1 {
		return r, fmt.Errorf("%s: %v not normalized to [0,1]", colFeelTemp, temp)
	}
	r.TemperatureRaw = temp

	if r.Count, err = parseInt(cols, colCount, i); err != nil {
		return r, err
	}
	if r.Count < 0 {
		return r, fmt.Errorf("%s: negative count %d", colCount, r.Count)
	}

	return r, nil
}

func parseInt(cols map[string][]string, name string, i int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(cols[name][i]))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseBool(cols map[string][]string, name string, i int) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(cols[name][i]))
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
