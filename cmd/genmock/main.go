// Command genmock writes a deterministic mock dataset in the JHU CSSE
// time-series layout, for running the dashboard without network access.
// It can also build the dashboard from the generated files with the real
// loader and domain package and write the result as a JSON fixture.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock \
//	  -days 45 \
//	  -codes data/country_codes.csv \
//	  -dashboard-out data/mock/dashboard.json
//
// The recovered series deliberately ends -recovered-lag days before the other
// two, as the upstream recovered file did, so the timeline shows the inner
// join trimming dates.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/csse"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// location is one mock upstream row with its growth parameters.
type location struct {
	province string
	country  string
	lat      string
	long     string
	seed     int64 // new cases on day one; grows linearly
	cfr      int64 // deaths per thousand confirmed
}

var locations = []location{
	{"", "Afghanistan", "33.93911", "67.709953", 3, 35},
	{"", "Egypt", "26.820553", "30.802498", 11, 48},
	{"", "France", "46.2276", "2.2137", 120, 20},
	{"French Polynesia", "France", "-17.6797", "149.4068", 2, 5},
	{"Reunion", "France", "-21.1151", "55.5364", 4, 3},
	{"Hubei", "China", "30.9756", "112.2707", 90, 50},
	{"Beijing", "China", "40.1824", "116.4142", 6, 10},
	{"", "Italy", "41.87194", "12.56738", 95, 70},
	{"", "Korea, South", "35.907757", "127.766922", 70, 8},
	{"", "US", "40.0", "-100.0", 300, 15},
	{"", "Diamond Princess", "0.0", "0.0", 9, 2},
	{"", "MS Zaandam", "0.0", "0.0", 1, 20},
}

const (
	recoveredPerThousand = 850
	recoveryDelay        = 14
)

var files = map[domain.Category]string{
	domain.Confirmed: "time_series_covid19_confirmed_global.csv",
	domain.Deaths:    "time_series_covid19_deaths_global.csv",
	domain.Recovered: "time_series_covid19_recovered_global.csv",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for the three CSV files")
	days := flag.Int("days", 45, "number of date columns")
	start := flag.String("start", "2020-01-22", "first date (YYYY-MM-DD)")
	recoveredLag := flag.Int("recovered-lag", 3, "days the recovered series ends early")
	codesPath := flag.String("codes", "data/country_codes.csv", "country-code reference used for -dashboard-out")
	dashboardOut := flag.String("dashboard-out", "", "optional output path for the built dashboard JSON")
	flag.Parse()

	first, err := domain.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if *days <= 0 || *recoveredLag < 0 || *recoveredLag >= *days {
		return fmt.Errorf("need -days > 0 and 0 <= -recovered-lag < -days")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *outDir, err)
	}

	dates := make([]domain.Date, *days)
	for i := range dates {
		dates[i] = domain.NewDate(first.Time().AddDate(0, 0, i))
	}

	for _, cat := range domain.Categories {
		n := len(dates)
		if cat == domain.Recovered {
			n -= *recoveredLag
		}
		path := filepath.Join(*outDir, files[cat])
		if err := writeSeries(path, cat, dates[:n]); err != nil {
			return fmt.Errorf("writing %s: %w", files[cat], err)
		}
		log.Printf("%s: %d rows x %d dates -> %s", cat, len(locations), n, path)
	}

	if *dashboardOut == "" {
		return nil
	}
	return writeDashboard(*outDir, *codesPath, *dashboardOut)
}

// confirmedOn is the cumulative count after day i (0-based): seed*(i+1)(i+2)/2.
func confirmedOn(loc location, i int) int64 {
	d := int64(i)
	return loc.seed * (d + 1) * (d + 2) / 2
}

func countOn(cat domain.Category, loc location, i int) int64 {
	switch cat {
	case domain.Deaths:
		return confirmedOn(loc, i) * loc.cfr / 1000
	case domain.Recovered:
		if i < recoveryDelay {
			return 0
		}
		return confirmedOn(loc, i-recoveryDelay) * recoveredPerThousand / 1000
	default:
		return confirmedOn(loc, i)
	}
}

func writeSeries(path string, cat domain.Category, dates []domain.Date) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"Province/State", "Country/Region", "Lat", "Long"}
	for _, d := range dates {
		header = append(header, jhuDate(d))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, loc := range locations {
		row := []string{loc.province, loc.country, loc.lat, loc.long}
		for i := range dates {
			row = append(row, fmt.Sprint(countOn(cat, loc, i)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// jhuDate formats a date the way upstream headers do: M/D/YY.
func jhuDate(d domain.Date) string {
	return fmt.Sprintf("%d/%d/%02d", int(d.Month), d.Day, d.Year%100)
}

func writeDashboard(dir, codesPath, out string) error {
	// Fixed clock for a reproducible built_at.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2020, time.March, 8, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := csse.NewLoader(csse.NewSource(time.Second, logger), csse.Locators{
		Confirmed:    filepath.Join(dir, files[domain.Confirmed]),
		Deaths:       filepath.Join(dir, files[domain.Deaths]),
		Recovered:    filepath.Join(dir, files[domain.Recovered]),
		CountryCodes: codesPath,
	}, logger, observability.NewMetricsForTesting())

	ds, err := loader.Load(context.Background())
	if err != nil {
		return err
	}
	d := domain.NewDashboard(ds)

	if err := writeJSON(out, d); err != nil {
		return fmt.Errorf("writing dashboard fixture: %w", err)
	}
	log.Printf("wrote dashboard fixture: %s (last update %s, total confirmed %d, %d unmatched)",
		out, d.Summary.LastUpdate, d.Summary.TotalConfirmed, len(d.Unmatched))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
