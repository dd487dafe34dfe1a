package csse

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
)

// codesSource labels the country-code reference in errors, logs and metrics.
const codesSource = "country_codes"

// Opener opens a source locator. *Source implements it.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Locators names the four inputs of a build.
type Locators struct {
	Confirmed    string
	Deaths       string
	Recovered    string
	CountryCodes string
}

// Loader loads the three time series and the country-code reference.
// It implements pipeline.Loader.
type Loader struct {
	opener   Opener
	locators Locators
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewLoader creates a Loader reading the given locators through opener.
func NewLoader(opener Opener, locators Locators, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		opener:   opener,
		locators: locators,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load fetches and parses every source in turn, stopping at the first
// failure. Every failure is a *domain.DataLoadError.
func (l *Loader) Load(ctx context.Context) (domain.Datasets, error) {
	var ds domain.Datasets
	var err error

	if ds.Confirmed, err = l.loadSeries(ctx, domain.Confirmed, l.locators.Confirmed); err != nil {
		return domain.Datasets{}, err
	}
	if ds.Deaths, err = l.loadSeries(ctx, domain.Deaths, l.locators.Deaths); err != nil {
		return domain.Datasets{}, err
	}
	if ds.Recovered, err = l.loadSeries(ctx, domain.Recovered, l.locators.Recovered); err != nil {
		return domain.Datasets{}, err
	}
	if ds.Codes, err = l.loadCodes(ctx); err != nil {
		return domain.Datasets{}, err
	}
	return ds, nil
}

func (l *Loader) loadSeries(ctx context.Context, category domain.Category, locator string) ([]domain.Observation, error) {
	source := string(category)
	start := time.Now()

	rc, err := l.opener.Open(ctx, locator)
	if err != nil {
		return nil, l.fail(source, locator, err)
	}
	defer rc.Close()

	wide, err := ParseTimeSeries(rc, category)
	if err != nil {
		return nil, l.fail(source, locator, err)
	}

	l.observe(source, len(wide.Rows), start)
	l.logger.Info("source loaded",
		"source", source,
		"locator", locator,
		"rows", len(wide.Rows),
		"dates", len(wide.Dates),
		"duration", time.Since(start),
	)
	return domain.Melt(wide), nil
}

func (l *Loader) loadCodes(ctx context.Context) (domain.CountryCodes, error) {
	locator := l.locators.CountryCodes
	start := time.Now()

	rc, err := l.opener.Open(ctx, locator)
	if err != nil {
		return domain.CountryCodes{}, l.fail(codesSource, locator, err)
	}
	defer rc.Close()

	codes, err := ParseCountryCodes(rc)
	if err != nil {
		return domain.CountryCodes{}, l.fail(codesSource, locator, err)
	}

	l.observe(codesSource, codes.Len(), start)
	l.logger.Info("source loaded", "source", codesSource, "locator", locator, "rows", codes.Len())
	return codes, nil
}

func (l *Loader) observe(source string, rows int, start time.Time) {
	l.metrics.SourcesLoaded.WithLabelValues(source).Inc()
	l.metrics.RowsParsed.WithLabelValues(source).Add(float64(rows))
	l.metrics.SourceLoadDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (l *Loader) fail(source, locator string, err error) error {
	l.metrics.SourceLoadErrors.WithLabelValues(source).Inc()
	return &domain.DataLoadError{Source: source, Locator: locator, Err: err}
}
