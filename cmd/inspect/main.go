// Command inspect builds the dashboard once from the given sources, prints
// the summary and ranked table, and runs consistency checks over the result:
// summary scalars, ranking order, country-code coverage and timeline
// coverage.
//
// Usage:
//
//	go run ./cmd/inspect \
//	  -confirmed data/mock/time_series_covid19_confirmed_global.csv \
//	  -deaths data/mock/time_series_covid19_deaths_global.csv \
//	  -recovered data/mock/time_series_covid19_recovered_global.csv \
//	  -codes data/country_codes.csv \
//	  -top 15
//
// Sources may be local paths or http(s) URLs; the defaults are the live JHU
// CSSE files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/csse"
	"github.com/couchcryptid/covid-dashboard-service/internal/config"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// counts prints integers with thousands separators, as the dashboard shows them.
var counts = message.NewPrinter(language.English)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	defaults, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config: %v\n", err)
		os.Exit(1)
	}

	confirmed := flag.String("confirmed", defaults.ConfirmedURL, "confirmed time series (path or URL)")
	deaths := flag.String("deaths", defaults.DeathsURL, "deaths time series (path or URL)")
	recovered := flag.String("recovered", defaults.RecoveredURL, "recovered time series (path or URL)")
	codes := flag.String("codes", defaults.CountryCodesPath, "country-code reference CSV")
	top := flag.Int("top", 10, "table rows to print (0 for all)")
	timeout := flag.Duration("timeout", defaults.FetchTimeout, "per-source fetch timeout")
	asJSON := flag.Bool("json", false, "print the whole dashboard as JSON and skip checks")
	flag.Parse()

	locators := csse.Locators{
		Confirmed:    *confirmed,
		Deaths:       *deaths,
		Recovered:    *recovered,
		CountryCodes: *codes,
	}
	if code := run(locators, *timeout, *top, *asJSON); code != 0 {
		os.Exit(code)
	}
}

func run(locators csse.Locators, timeout time.Duration, top int, asJSON bool) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := csse.NewLoader(csse.NewSource(timeout, logger), locators, logger, observability.NewMetricsForTesting())

	ds, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	d := domain.NewDashboard(ds)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: encode: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Println("=== COVID-19 Dashboard Snapshot ===")
	fmt.Println()
	fmt.Printf("Last update:           %s\n", d.Summary.LastUpdate)
	counts.Printf("Total confirmed cases: %d\n", d.Summary.TotalConfirmed)
	fmt.Println()
	printTable(d.Table, top)

	phases := []*phase{
		checkSummary(d),
		checkRanking(d),
		checkCoverage(d),
		checkTimeline(ds, d),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Printf("      %s\n", n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nChecks FAILED.")
	return 1
}

func printTable(rows []domain.SummaryRow, top int) {
	if top <= 0 || top > len(rows) {
		top = len(rows)
	}
	fmt.Printf("  %-4s %-32s %12s\n", "#", "Country/Region", "Confirmed")
	for i, r := range rows[:top] {
		counts.Printf("  %-4d %-32s %12d\n", i+1, r.Country, r.Confirmed)
	}
	if top < len(rows) {
		fmt.Printf("  ... %d more\n", len(rows)-top)
	}
}

// ── Phase 1: Summary scalars ──

func checkSummary(d *domain.Dashboard) *phase {
	p := &phase{name: "Summary scalars"}

	var tableSum int64
	for _, r := range d.Table {
		tableSum += r.Confirmed
	}
	if tableSum != d.Summary.TotalConfirmed {
		p.errorf("total confirmed %d != table sum %d", d.Summary.TotalConfirmed, tableSum)
	}
	if d.Summary.LastUpdate.IsZero() {
		p.errorf("no last update date")
	}
	if len(d.Table) != len(d.Snapshot) {
		p.errorf("table has %d rows, snapshot has %d", len(d.Table), len(d.Snapshot))
	}
	return p
}

// ── Phase 2: Ranking ──

func checkRanking(d *domain.Dashboard) *phase {
	p := &phase{name: "Ranking order"}
	for i := 1; i < len(d.Table); i++ {
		if d.Table[i].Confirmed > d.Table[i-1].Confirmed {
			p.errorf("row %d (%s, %d) ranks above row %d (%s, %d)",
				i, d.Table[i-1].Country, d.Table[i-1].Confirmed,
				i+1, d.Table[i].Country, d.Table[i].Confirmed)
		}
	}
	for i, r := range d.Table {
		if r.Confirmed < 0 {
			p.errorf("row %d (%s): negative count %d", i+1, r.Country, r.Confirmed)
		}
	}
	return p
}

// ── Phase 3: Country-code coverage ──
// Unmatched countries are expected; they are reported, not failed.

func checkCoverage(d *domain.Dashboard) *phase {
	p := &phase{name: "Country-code coverage"}
	p.notef("%d of %d countries on the map", len(d.Map), len(d.Table))
	for _, c := range d.Unmatched {
		p.notef("no code: %s", c)
	}
	if len(d.Map)+len(d.Unmatched) != len(d.Snapshot) {
		p.errorf("map (%d) + unmatched (%d) != snapshot (%d)", len(d.Map), len(d.Unmatched), len(d.Snapshot))
	}
	return p
}

// ── Phase 4: Timeline coverage ──

func checkTimeline(ds domain.Datasets, d *domain.Dashboard) *phase {
	p := &phase{name: "Timeline coverage"}

	dates := map[domain.Category]map[domain.Date]bool{
		domain.Confirmed: distinctDates(ds.Confirmed),
		domain.Deaths:    distinctDates(ds.Deaths),
		domain.Recovered: distinctDates(ds.Recovered),
	}
	timeline := map[domain.Category]map[domain.Date]bool{}
	for _, t := range d.Timeline {
		if timeline[t.Category] == nil {
			timeline[t.Category] = map[domain.Date]bool{}
		}
		timeline[t.Category][t.Date] = true
	}

	for _, cat := range domain.Categories {
		p.notef("%-9s source dates %4d, timeline dates %4d", cat, len(dates[cat]), len(timeline[cat]))
		for date := range timeline[cat] {
			for _, other := range domain.Categories {
				if !dates[other][date] {
					p.errorf("%s timeline has %s, missing from %s source", cat, date, other)
				}
			}
		}
	}
	return p
}

func distinctDates(obs []domain.Observation) map[domain.Date]bool {
	out := make(map[domain.Date]bool)
	for _, o := range obs {
		out[o.Date] = true
	}
	return out
}
