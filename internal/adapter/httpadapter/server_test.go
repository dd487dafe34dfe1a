package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	dashboard *domain.Dashboard
}

func (m *mockProvider) CheckReadiness(_ context.Context) error {
	if m.dashboard == nil {
		return errors.New("dashboard has not been built yet")
	}
	return nil
}

func (m *mockProvider) Dashboard() *domain.Dashboard { return m.dashboard }

func strPtr(s string) *string { return &s }

func testDashboard() *domain.Dashboard {
	lastUpdate := domain.Date{Year: 2023, Month: time.March, Day: 9}
	return &domain.Dashboard{
		Summary: domain.SummaryFacts{LastUpdate: lastUpdate, TotalConfirmed: 39706820},
		Table: []domain.SummaryRow{
			{Country: "France", Confirmed: 39191061},
			{Country: "Egypt", Confirmed: 515759},
			{Country: "Diamond Princess", Confirmed: 712},
		},
		Snapshot: []domain.SnapshotRow{
			{Code: strPtr("FRA"), Country: "France", DisplayName: strPtr("France"), Confirmed: 39191061},
			{Code: strPtr("EGY"), Country: "Egypt", DisplayName: strPtr("Egypt"), Confirmed: 515759},
			{Country: "Diamond Princess", Confirmed: 712},
		},
		Map: []domain.ChoroplethPoint{
			{Code: "FRA", LogConfirmed: 7.593, Confirmed: 39191061, Text: "FRA<br>39191061"},
			{Code: "EGY", LogConfirmed: 5.712, Confirmed: 515759, Text: "EGY<br>515759"},
		},
		Timeline: []domain.DailyTotal{
			{Date: lastUpdate, Category: domain.Confirmed, Cases: 39706820},
		},
	}
}

func newTestServer(d *domain.Dashboard) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockProvider{dashboard: d}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenBuilt(t *testing.T) {
	rec := get(t, newTestServer(testDashboard()), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeBuild(t *testing.T) {
	rec := get(t, newTestServer(nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(testDashboard()), "/api/summary")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"last_update":"2023-03-09","total_confirmed":39706820}`, rec.Body.String())
}

func TestTable(t *testing.T) {
	rec := get(t, newTestServer(testDashboard()), "/api/table")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []domain.SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "France", rows[0].Country)
	assert.Equal(t, "Diamond Princess", rows[2].Country)
}

func TestMap(t *testing.T) {
	rec := get(t, newTestServer(testDashboard()), "/api/map")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points []domain.ChoroplethPoint `json:"points"`
		Ticks  []domain.ColorbarTick    `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Points, 2)
	assert.Equal(t, "FRA", body.Points[0].Code)
	assert.Equal(t, "FRA<br>39191061", body.Points[0].Text)
	require.Len(t, body.Ticks, 4)
	assert.Equal(t, ">10K", body.Ticks[3].Label)
}

func TestTimeline(t *testing.T) {
	rec := get(t, newTestServer(testDashboard()), "/api/timeline")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"2023-03-09","category":"Confirmed","cases":39706820}]`, rec.Body.String())
}

func TestCountrySearch(t *testing.T) {
	srv := newTestServer(testDashboard())

	t.Run("found", func(t *testing.T) {
		rec := get(t, srv, "/api/countries/Egypt")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Egypt", body["country"])
		assert.Equal(t, float64(515759), body["confirmed"])
		assert.Equal(t, "Confirmed cases in Egypt : 515759", body["message"])
	})

	t.Run("unmatched country is still searchable", func(t *testing.T) {
		rec := get(t, srv, "/api/countries/Diamond%20Princess")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := get(t, srv, "/api/countries/Narnia")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "ex : Egypt")
	})

	t.Run("blank", func(t *testing.T) {
		rec := get(t, srv, "/api/countries/%20%20")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIReturns503BeforeBuild(t *testing.T) {
	srv := newTestServer(nil)
	for _, path := range []string{"/api/summary", "/api/table", "/api/map", "/api/timeline", "/api/countries/Egypt"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, srv, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "not built")
		})
	}
}
