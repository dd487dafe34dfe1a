package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSummarize(t *testing.T) {
	conf := []Observation{
		obs(Confirmed, "", "Italy", d3, 7),
		obs(Confirmed, "", "Italy", d1, 1),
	}
	snapshot := []SnapshotRow{
		{Code: strPtr("ITA"), Country: "Italy", DisplayName: strPtr("Italy"), Confirmed: 9_007_199_254_740_993},
		{Country: "Diamond Princess", Confirmed: 712},
	}

	facts := Summarize(conf, snapshot)

	assert.Equal(t, d3, facts.LastUpdate)
	assert.Equal(t, int64(9_007_199_254_741_705), facts.TotalConfirmed)
}

func TestBuildSummaryTable(t *testing.T) {
	snapshot := []SnapshotRow{
		{Code: strPtr("AAA"), Country: "A", Confirmed: 50},
		{Country: "Unmatched", Confirmed: 40},
		{Code: strPtr("CCC"), Country: "C", Confirmed: 30},
	}

	table := BuildSummaryTable(snapshot)

	assert.Equal(t, []SummaryRow{
		{Country: "A", Confirmed: 50},
		{Country: "Unmatched", Confirmed: 40},
		{Country: "C", Confirmed: 30},
	}, table)
}

func TestBuildChoropleth(t *testing.T) {
	snapshot := []SnapshotRow{
		{Code: strPtr("USA"), Country: "US", Confirmed: 10000},
		{Country: "MS Zaandam", Confirmed: 9},
		{Code: strPtr("VAT"), Country: "Holy See", Confirmed: 0},
	}

	points := BuildChoropleth(snapshot)

	require.Len(t, points, 2)
	assert.Equal(t, "USA", points[0].Code)
	assert.InDelta(t, 4.0, points[0].LogConfirmed, 1e-9)
	assert.Equal(t, int64(10000), points[0].Confirmed)
	assert.Equal(t, "USA<br>10000", points[0].Text)
	assert.Equal(t, "VAT", points[1].Code)
	assert.Equal(t, 0.0, points[1].LogConfirmed)
	assert.False(t, math.IsInf(points[1].LogConfirmed, -1))
}

func TestNewDashboard(t *testing.T) {
	built := time.Date(2023, time.March, 10, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(built))
	defer SetClock(nil)

	ds := Datasets{
		Confirmed: []Observation{
			obs(Confirmed, "", "France", d1, 80),
			obs(Confirmed, "Reunion", "France", d1, 1),
			obs(Confirmed, "", "Atlantis", d1, 3),
			obs(Confirmed, "", "France", d2, 100),
			obs(Confirmed, "Reunion", "France", d2, 5),
			obs(Confirmed, "", "Atlantis", d2, 4),
		},
		Deaths: []Observation{
			obs(Deaths, "", "France", d1, 2),
			obs(Deaths, "Reunion", "France", d1, 0),
			obs(Deaths, "", "Atlantis", d1, 0),
		},
		Recovered: []Observation{
			obs(Recovered, "", "France", d1, 10),
			obs(Recovered, "Reunion", "France", d1, 1),
			obs(Recovered, "", "Atlantis", d1, 1),
			obs(Recovered, "", "France", d2, 20),
		},
		Codes: testCodes(),
	}

	d := NewDashboard(ds)

	assert.Equal(t, built, d.BuiltAt)
	assert.Equal(t, SummaryFacts{LastUpdate: d2, TotalConfirmed: 109}, d.Summary)
	assert.Equal(t, []SummaryRow{
		{Country: "France", Confirmed: 105},
		{Country: "Atlantis", Confirmed: 4},
	}, d.Table)
	assert.Equal(t, []string{"Atlantis"}, d.Unmatched)

	require.Len(t, d.Map, 1)
	assert.Equal(t, "FRA", d.Map[0].Code)

	assert.Equal(t, []DailyTotal{
		{Date: d1, Category: Confirmed, Cases: 84},
		{Date: d1, Category: Deaths, Cases: 2},
		{Date: d1, Category: Recovered, Cases: 12},
	}, d.Timeline)

	t.Run("json shape", func(t *testing.T) {
		b, err := json.Marshal(d.Snapshot[1])
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":null,"country":"Atlantis","display_name":null,"confirmed":4}`, string(b))

		b, err = json.Marshal(d.Summary)
		require.NoError(t, err)
		assert.JSONEq(t, `{"last_update":"2020-03-02","total_confirmed":109}`, string(b))
	})
}

func TestDashboard_FindCountry(t *testing.T) {
	d := &Dashboard{Table: []SummaryRow{
		{Country: "Egypt", Confirmed: 515759},
		{Country: "Korea, South", Confirmed: 30615522},
	}}

	t.Run("exact match", func(t *testing.T) {
		row, err := d.FindCountry("Egypt")
		require.NoError(t, err)
		assert.Equal(t, int64(515759), row.Confirmed)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		row, err := d.FindCountry("  Korea, South ")
		require.NoError(t, err)
		assert.Equal(t, "Korea, South", row.Country)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := d.FindCountry("egypt")
		require.ErrorIs(t, err, ErrCountryNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := d.FindCountry("   ")
		require.ErrorIs(t, err, ErrEmptyCountryQuery)
	})
}

func TestDataLoadError(t *testing.T) {
	err := error(&DataLoadError{Source: "Deaths", Locator: "https://example.test/d.csv", Err: ErrMissingColumn})

	assert.Equal(t, "load Deaths from https://example.test/d.csv: missing column", err.Error())
	assert.ErrorIs(t, err, ErrMissingColumn)

	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, "Deaths", dle.Source)
}
