package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Summarize derives the last update date from the confirmed table and the
// total confirmed from the snapshot.
func Summarize(confirmed []Observation, snapshot []SnapshotRow) SummaryFacts {
	var total int64
	for _, r := range snapshot {
		total += r.Confirmed
	}
	return SummaryFacts{
		LastUpdate:     LatestDate(confirmed),
		TotalConfirmed: total,
	}
}

// BuildSummaryTable projects the snapshot to (country, confirmed), keeping its order.
func BuildSummaryTable(snapshot []SnapshotRow) []SummaryRow {
	out := make([]SummaryRow, len(snapshot))
	for i, r := range snapshot {
		out[i] = SummaryRow{Country: r.Country, Confirmed: r.Confirmed}
	}
	return out
}

// BuildChoropleth converts the snapshot into the code-keyed map feed. Rows
// without a code cannot be placed on the map and are skipped. A zero count
// maps to log value 0.
func BuildChoropleth(snapshot []SnapshotRow) []ChoroplethPoint {
	out := make([]ChoroplethPoint, 0, len(snapshot))
	for _, r := range snapshot {
		if r.Code == nil {
			continue
		}
		var logv float64
		if r.Confirmed > 0 {
			logv = math.Log10(float64(r.Confirmed))
		}
		out = append(out, ChoroplethPoint{
			Code:         *r.Code,
			LogConfirmed: logv,
			Confirmed:    r.Confirmed,
			Text:         *r.Code + "<br>" + strconv.FormatInt(r.Confirmed, 10),
		})
	}
	return out
}

// Dashboard is the immutable result of one pipeline build. Nothing mutates
// it after NewDashboard returns; consumers must treat the slices as read-only.
type Dashboard struct {
	Summary   SummaryFacts      `json:"summary"`
	Table     []SummaryRow      `json:"table"`
	Snapshot  []SnapshotRow     `json:"snapshot"`
	Timeline  []DailyTotal      `json:"timeline"`
	Map       []ChoroplethPoint `json:"map"`
	Unmatched []string          `json:"unmatched"`
	BuiltAt   time.Time         `json:"built_at"`
}

// NewDashboard runs the reshape, snapshot and summary stages over loaded data.
func NewDashboard(ds Datasets) *Dashboard {
	timeline := DailyTotals(ds.Confirmed, ds.Deaths, ds.Recovered)
	snapshot := LatestSnapshot(ds.Confirmed, ds.Codes)

	var unmatched []string
	for _, r := range snapshot {
		if r.Code == nil {
			unmatched = append(unmatched, r.Country)
		}
	}

	return &Dashboard{
		Summary:   Summarize(ds.Confirmed, snapshot),
		Table:     BuildSummaryTable(snapshot),
		Snapshot:  snapshot,
		Timeline:  timeline,
		Map:       BuildChoropleth(snapshot),
		Unmatched: unmatched,
		BuiltAt:   clock.Now().UTC(),
	}
}

// FindCountry returns the first table row whose country matches name exactly
// (surrounding whitespace ignored).
func (d *Dashboard) FindCountry(name string) (SummaryRow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SummaryRow{}, ErrEmptyCountryQuery
	}
	for _, r := range d.Table {
		if r.Country == name {
			return r, nil
		}
	}
	return SummaryRow{}, ErrCountryNotFound
}
