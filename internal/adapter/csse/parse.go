package csse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Identifying columns of the time-series tables.
const (
	colProvince = "Province/State"
	colCountry  = "Country/Region"
	colLat      = "Lat"
	colLong     = "Long"
)

// Columns of the country-code reference.
const (
	colCode        = "Codes"
	colSourceName  = "COVID-19"
	colDisplayName = "Names"
)

var identifyingColumns = []string{colProvince, colCountry, colLat, colLong}

// ParseTimeSeries reads a wide JHU time-series table. Every column other
// than the four identifying ones must be a date header; its cells are counts.
func ParseTimeSeries(r io.Reader, category domain.Category) (domain.WideTimeSeries, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return domain.WideTimeSeries{}, fmt.Errorf("read header: %w", err)
	}
	idx := indexHeader(header)
	for _, col := range identifyingColumns {
		if _, ok := idx[col]; !ok {
			return domain.WideTimeSeries{}, fmt.Errorf("%w: %q", domain.ErrMissingColumn, col)
		}
	}

	// Date columns in header order, with their positions.
	type dateCol struct {
		pos  int
		date domain.Date
	}
	var dateCols []dateCol
	seen := make(map[domain.Date]bool)
	for i, h := range header {
		if isIdentifying(cleanHeader(h)) {
			continue
		}
		d, err := domain.ParseDate(cleanHeader(h))
		if err != nil {
			return domain.WideTimeSeries{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		if seen[d] {
			return domain.WideTimeSeries{}, fmt.Errorf("column %d: duplicate date %s", i+1, d)
		}
		seen[d] = true
		dateCols = append(dateCols, dateCol{pos: i, date: d})
	}

	wide := domain.WideTimeSeries{
		Category: category,
		Dates:    make([]domain.Date, len(dateCols)),
	}
	for i, dc := range dateCols {
		wide.Dates[i] = dc.date
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.WideTimeSeries{}, fmt.Errorf("read row: %w", err)
		}
		if len(row) != len(header) {
			return domain.WideTimeSeries{}, fmt.Errorf("line %d: %d fields, header has %d", line, len(row), len(header))
		}

		wr := domain.WideRow{
			Province: raw(row, idx, colProvince),
			Country:  raw(row, idx, colCountry),
			Lat:      get(row, idx, colLat),
			Long:     get(row, idx, colLong),
			Counts:   make(map[domain.Date]int64, len(dateCols)),
		}
		for _, dc := range dateCols {
			n, err := parseCount(row[dc.pos])
			if err != nil {
				return domain.WideTimeSeries{}, fmt.Errorf("line %d, %s: %w", line, dc.date, err)
			}
			wr.Counts[dc.date] = n
		}
		wide.Rows = append(wide.Rows, wr)
	}

	return wide, nil
}

// ParseCountryCodes reads the country-code reference table as-is.
func ParseCountryCodes(r io.Reader) (domain.CountryCodes, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return domain.CountryCodes{}, fmt.Errorf("read header: %w", err)
	}
	idx := indexHeader(header)
	for _, col := range []string{colCode, colSourceName, colDisplayName} {
		if _, ok := idx[col]; !ok {
			return domain.CountryCodes{}, fmt.Errorf("%w: %q", domain.ErrMissingColumn, col)
		}
	}

	var entries []domain.CountryCode
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.CountryCodes{}, fmt.Errorf("read row: %w", err)
		}
		entries = append(entries, domain.CountryCode{
			Code:        get(row, idx, colCode),
			SourceName:  raw(row, idx, colSourceName),
			DisplayName: get(row, idx, colDisplayName),
		})
	}

	return domain.NewCountryCodes(entries), nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row width is checked against the header explicitly
	return reader
}

// cleanHeader strips a UTF-8 byte order mark and surrounding whitespace.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[cleanHeader(h)] = i
	}
	return idx
}

func isIdentifying(h string) bool {
	for _, col := range identifyingColumns {
		if h == col {
			return true
		}
	}
	return false
}

func get(row []string, idx map[string]int, col string) string {
	return strings.TrimSpace(raw(row, idx, col))
}

// raw returns the cell untouched. Join keys must match byte for byte.
func raw(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseCount reads a cumulative count. Empty cells are zero; whole-valued
// decimals such as "12.0" are accepted.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// Some revisions of the upstream files write counts as "12.0".
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q", domain.ErrBadCount, s)
	}
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", domain.ErrBadCount, s)
	}
	return n.Int64(), nil
}
