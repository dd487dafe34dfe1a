package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category names one of the three upstream time series. The string value is
// also the name of the count column in long form.
type Category string

const (
	Confirmed Category = "Confirmed"
	Deaths    Category = "Deaths"
	Recovered Category = "Recovered"
)

// Categories lists the time series in the order their totals are emitted.
var Categories = []Category{Confirmed, Deaths, Recovered}

// Date is a calendar day. It is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// dateLayouts are tried in order when parsing a date header.
var dateLayouts = []string{"1/2/06", "2006-01-02", "1/2/2006"}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a time-series header such as "1/22/20" or "2020-01-22".
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// String formats the day as ISO YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes the day as ISO YYYY-MM-DD, which also makes it a JSON string.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts any layout ParseDate accepts.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WideRow is one location row of a wide time series. Counts holds one entry
// per date column of the table.
type WideRow struct {
	Province string
	Country  string
	Lat      string
	Long     string
	Counts   map[Date]int64
}

// WideTimeSeries is a parsed upstream table: identifying columns plus one
// count per date. Dates keeps the header order.
type WideTimeSeries struct {
	Category Category
	Dates    []Date
	Rows     []WideRow
}

// Observation is one (location, date) count in long form.
type Observation struct {
	Province string   `json:"province"`
	Country  string   `json:"country"`
	Date     Date     `json:"date"`
	Category Category `json:"category"`
	Count    int64    `json:"count"`
}

// DailyTotal is the global count of one category on one day.
type DailyTotal struct {
	Date     Date     `json:"date"`
	Category Category `json:"category"`
	Cases    int64    `json:"cases"`
}

// CountryCode is one row of the country-code reference.
type CountryCode struct {
	Code        string `json:"code"`
	SourceName  string `json:"source_name"` // Country/Region spelling used upstream
	DisplayName string `json:"display_name"`
}

// CountryCodes is the immutable lookup from upstream country spelling to
// code and display name.
type CountryCodes struct {
	entries  []CountryCode
	bySource map[string]int
}

// NewCountryCodes indexes entries by SourceName. When a source name repeats,
// the first entry wins.
func NewCountryCodes(entries []CountryCode) CountryCodes {
	c := CountryCodes{
		entries:  append([]CountryCode(nil), entries...),
		bySource: make(map[string]int, len(entries)),
	}
	for i, e := range c.entries {
		if _, ok := c.bySource[e.SourceName]; !ok {
			c.bySource[e.SourceName] = i
		}
	}
	return c
}

// Lookup matches sourceName exactly against the upstream spelling.
func (c CountryCodes) Lookup(sourceName string) (CountryCode, bool) {
	i, ok := c.bySource[sourceName]
	if !ok {
		return CountryCode{}, false
	}
	return c.entries[i], true
}

// Len returns the number of reference rows.
func (c CountryCodes) Len() int { return len(c.entries) }

// Datasets is the Loader output: the three categories in long form and the
// country-code reference.
type Datasets struct {
	Confirmed []Observation
	Deaths    []Observation
	Recovered []Observation
	Codes     CountryCodes
}

// SnapshotRow is one country on the latest confirmed day. Code and
// DisplayName are nil when the country has no reference entry.
type SnapshotRow struct {
	Code        *string `json:"code"`
	Country     string  `json:"country"`
	DisplayName *string `json:"display_name"`
	Confirmed   int64   `json:"confirmed"`
}

// SummaryFacts are the scalar values shown above the table.
type SummaryFacts struct {
	LastUpdate     Date  `json:"last_update"`
	TotalConfirmed int64 `json:"total_confirmed"`
}

// SummaryRow is one line of the ranked country table.
type SummaryRow struct {
	Country   string `json:"country"`
	Confirmed int64  `json:"confirmed"`
}

// ChoroplethPoint feeds one country of the map.
type ChoroplethPoint struct {
	Code         string  `json:"code"`
	LogConfirmed float64 `json:"log_confirmed"`
	Confirmed    int64   `json:"confirmed"`
	Text         string  `json:"text"`
}

// ColorbarTick labels a log10 value on the map's color scale.
type ColorbarTick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// ColorbarTicks are the fixed map legend labels.
var ColorbarTicks = []ColorbarTick{
	{Value: 1, Label: "<10"},
	{Value: 2, Label: "100"},
	{Value: 3, Label: "1K"},
	{Value: 4, Label: ">10K"},
}
