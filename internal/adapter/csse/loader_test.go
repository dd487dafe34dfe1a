package csse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deathsCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Afghanistan,33.93911,67.709953,0,0
Australian Capital Territory,Australia,-35.4735,149.0124,0,0
,"Korea, South",35.907757,127.766922,0,1
`
	recoveredCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
,Afghanistan,33.93911,67.709953,0,0,0
Australian Capital Territory,Australia,-35.4735,149.0124,0,0,1
,"Korea, South",35.907757,127.766922,0,0,1
`
	codesCSV = `Codes,COVID-19,Names
AFG,Afghanistan,Afghanistan
AUS,Australia,Australia
`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixtureServer serves the three series over HTTP and counts requests.
func newFixtureServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/confirmed.csv":
			io.WriteString(w, confirmedCSV) //nolint:errcheck // test fixture
		case "/deaths.csv":
			io.WriteString(w, deathsCSV) //nolint:errcheck // test fixture
		case "/recovered.csv":
			io.WriteString(w, recoveredCSV) //nolint:errcheck // test fixture
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCodes(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "country_codes.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	var hits atomic.Int64
	srv := newFixtureServer(t, &hits)
	metrics := observability.NewMetricsForTesting()

	loader := NewLoader(NewSource(5*time.Second, discardLogger()), Locators{
		Confirmed:    srv.URL + "/confirmed.csv",
		Deaths:       srv.URL + "/deaths.csv",
		Recovered:    srv.URL + "/recovered.csv",
		CountryCodes: writeCodes(t, codesCSV),
	}, discardLogger(), metrics)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Confirmed, 9)
	assert.Len(t, ds.Deaths, 6)
	assert.Len(t, ds.Recovered, 9)
	assert.Equal(t, 2, ds.Codes.Len())
	assert.Equal(t, domain.Deaths, ds.Deaths[0].Category)

	assert.Equal(t, int64(3), hits.Load(), "one fetch per series, no retries")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourcesLoaded.WithLabelValues("Confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourcesLoaded.WithLabelValues(codesSource)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RowsParsed.WithLabelValues("Recovered")))
}

func TestLoader_Load_FileURL(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"confirmed.csv": confirmedCSV,
		"deaths.csv":    deathsCSV,
		"recovered.csv": recoveredCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	loader := NewLoader(NewSource(time.Second, discardLogger()), Locators{
		Confirmed:    "file://" + filepath.Join(dir, "confirmed.csv"),
		Deaths:       filepath.Join(dir, "deaths.csv"),
		Recovered:    filepath.Join(dir, "recovered.csv"),
		CountryCodes: writeCodes(t, codesCSV),
	}, discardLogger(), observability.NewMetricsForTesting())

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Confirmed, 9)
}

func TestLoader_Load_Unreachable(t *testing.T) {
	var hits atomic.Int64
	srv := newFixtureServer(t, &hits)
	metrics := observability.NewMetricsForTesting()

	loader := NewLoader(NewSource(5*time.Second, discardLogger()), Locators{
		Confirmed:    srv.URL + "/confirmed.csv",
		Deaths:       srv.URL + "/missing.csv",
		Recovered:    srv.URL + "/recovered.csv",
		CountryCodes: writeCodes(t, codesCSV),
	}, discardLogger(), metrics)

	_, err := loader.Load(context.Background())
	require.Error(t, err)

	var dle *domain.DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, "Deaths", dle.Source)
	assert.Equal(t, srv.URL+"/missing.csv", dle.Locator)
	assert.Contains(t, err.Error(), "status 404")

	assert.Equal(t, int64(2), hits.Load(), "recovered is never fetched after a failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourceLoadErrors.WithLabelValues("Deaths")))
}

func TestLoader_Load_MalformedCodes(t *testing.T) {
	var hits atomic.Int64
	srv := newFixtureServer(t, &hits)

	loader := NewLoader(NewSource(5*time.Second, discardLogger()), Locators{
		Confirmed:    srv.URL + "/confirmed.csv",
		Deaths:       srv.URL + "/deaths.csv",
		Recovered:    srv.URL + "/recovered.csv",
		CountryCodes: writeCodes(t, "Code,Name\nFRA,France\n"),
	}, discardLogger(), observability.NewMetricsForTesting())

	_, err := loader.Load(context.Background())

	var dle *domain.DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, codesSource, dle.Source)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	loader := NewLoader(NewSource(time.Second, discardLogger()), Locators{
		Confirmed: filepath.Join(t.TempDir(), "nope.csv"),
	}, discardLogger(), observability.NewMetricsForTesting())

	_, err := loader.Load(context.Background())

	var dle *domain.DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, "Confirmed", dle.Source)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSource_Open_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, confirmedCSV) //nolint:errcheck // test fixture
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(time.Second, discardLogger()).Open(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "fetch:"))
}
