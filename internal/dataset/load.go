package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ColumnCount is the number of columns in the source layout.
const ColumnCount = 16

// sourceHeader is the expected header, in order. Columns are mapped
// positionally; the names are only checked to catch a shifted layout.
var sourceHeader = [ColumnCount]string{
	"name", "platform", "year_of_release", "genre", "publisher",
	"na_sales", "eu_sales", "jp_sales", "other_sales", "global_sales",
	"critic_score", "critic_count", "user_score", "user_count",
	"developer", "rating",
}

const (
	colTitle = iota
	colPlatform
	colYear
	colGenre
	colPublisher
	colNA
	colEU
	colJP
	colOther
	colGlobal
	_ // critic score
	_ // critic count
	_ // user score
	_ // user count
	colDeveloper
	colRating
)

// LoadError is returned when the dataset cannot be read or does not have the
// expected layout. It is fatal: the dashboard does not start without a table.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Stats describes what normalization kept and dropped.
type Stats struct {
	Rows         int `json:"rows"`
	Kept         int `json:"kept"`
	MissingYear  int `json:"missing_year"`
	MissingGenre int `json:"missing_genre"`
}

// Options configures Load.
type Options struct {
	Client    *http.Client
	UserAgent string
	Logger    *zap.Logger
}

// Load opens source (path, http(s) URL or blob URL), parses and normalizes it.
// Every failure is a *LoadError.
func Load(ctx context.Context, source string, opts Options) (*Table, error) {
	table, _, err := LoadWithStats(ctx, source, opts)
	return table, err
}

// LoadWithStats is Load that also reports normalization counts.
func LoadWithStats(ctx context.Context, source string, opts Options) (*Table, Stats, error) {
	rc, err := Open(ctx, source, opts)
	if err != nil {
		return nil, Stats{}, &LoadError{Source: source, Err: err}
	}
	defer rc.Close()

	table, stats, err := parse(rc)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = source
			return nil, stats, le
		}
		return nil, stats, &LoadError{Source: source, Err: err}
	}
	if opts.Logger != nil {
		opts.Logger.Info("dataset loaded",
			zap.String("source", source),
			zap.Int("rows", stats.Rows),
			zap.Int("kept", stats.Kept),
			zap.Int("missing_year", stats.MissingYear),
			zap.Int("missing_genre", stats.MissingGenre))
	}
	return table, stats, nil
}

// Parse reads a CSV stream in the source layout and returns the normalized
// table.
func Parse(r io.Reader) (*Table, error) {
	table, _, err := parse(r)
	return table, err
}

// ParseWithStats is Parse that also reports normalization counts.
func ParseWithStats(r io.Reader) (*Table, Stats, error) {
	return parse(r)
}

func parse(r io.Reader) (*Table, Stats, error) {
	var stats Stats
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, &LoadError{Err: errors.New("empty source: missing header row")}
		}
		return nil, stats, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}
	if err := checkHeader(header); err != nil {
		return nil, stats, &LoadError{Err: err}
	}
	reader.FieldsPerRecord = ColumnCount

	var records []GameRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, &LoadError{Err: fmt.Errorf("read row: %w", err)}
		}
		stats.Rows++

		rec, ok := normalize(row, &stats)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)
	return &Table{records: records}, stats, nil
}

func checkHeader(header []string) error {
	if len(header) != ColumnCount {
		return fmt.Errorf("expected %d columns, got %d", ColumnCount, len(header))
	}
	for i, name := range header {
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if got != sourceHeader[i] {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, sourceHeader[i], strings.TrimSpace(name))
		}
	}
	return nil
}

// normalize maps a raw row to a record. Rows without a positive year or a
// genre are rejected.
func normalize(row []string, stats *Stats) (GameRecord, bool) {
	year := parseYear(row[colYear])
	if year <= 0 {
		stats.MissingYear++
		return GameRecord{}, false
	}
	genre := strings.TrimSpace(row[colGenre])
	if genre == "" {
		stats.MissingGenre++
		return GameRecord{}, false
	}
	return GameRecord{
		Title:     strings.TrimSpace(row[colTitle]),
		Platform:  strings.TrimSpace(row[colPlatform]),
		Year:      year,
		Genre:     genre,
		Publisher: strings.TrimSpace(row[colPublisher]),
		Developer: strings.TrimSpace(row[colDeveloper]),
		Rating:    strings.TrimSpace(row[colRating]),
		NA:        parseSales(row[colNA]),
		EU:        parseSales(row[colEU]),
		JP:        parseSales(row[colJP]),
		Other:     parseSales(row[colOther]),
		Global:    parseSales(row[colGlobal]),
	}, true
}

// parseYear accepts "2006" and "2006.0"; anything else is 0.
func parseYear(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func parseSales(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
