package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
)

// Loader fetches and parses the three time series and the country codes.
type Loader interface {
	Load(ctx context.Context) (domain.Datasets, error)
}

// Publisher ships a finished dashboard to a downstream sink.
type Publisher interface {
	PublishSnapshot(ctx context.Context, d *domain.Dashboard) error
}

// Pipeline runs Loader → Reshaper → Snapshot Extractor → Summary Builder once
// and holds the resulting dashboard for read-only consumers.
type Pipeline struct {
	loader    Loader
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	dashboard atomic.Pointer[domain.Dashboard]
}

// New creates a Pipeline. Pass a nil publisher to skip publishing.
func New(l Loader, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:    l,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// Build loads every source and derives the dashboard. A load failure aborts
// the build and nothing is published. Once a build succeeds, later calls
// return the same dashboard without reloading.
func (p *Pipeline) Build(ctx context.Context) (*domain.Dashboard, error) {
	if d := p.dashboard.Load(); d != nil {
		return d, nil
	}

	start := time.Now()
	p.logger.Info("dashboard build started")

	ds, err := p.loader.Load(ctx)
	if err != nil {
		p.logger.Error("load failed", "error", err)
		return nil, err
	}

	d := p.assemble(ds)
	p.dashboard.Store(d)
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("dashboard build complete",
		"last_update", d.Summary.LastUpdate.String(),
		"total_confirmed", d.Summary.TotalConfirmed,
		"countries", len(d.Table),
		"timeline_points", len(d.Timeline),
		"duration", time.Since(start),
	)

	p.publish(ctx, d)
	return d, nil
}

// Dashboard returns the built dashboard, or nil before Build succeeds.
func (p *Pipeline) Dashboard() *domain.Dashboard {
	return p.dashboard.Load()
}

// CheckReadiness returns nil once a dashboard has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.dashboard.Load() == nil {
		return errors.New("dashboard has not been built yet")
	}
	return nil
}

// publish is best-effort: a publish failure is logged and counted but the
// dashboard keeps serving.
func (p *Pipeline) publish(ctx context.Context, d *domain.Dashboard) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishSnapshot(ctx, d); err != nil {
		p.logger.Warn("snapshot publish failed", "error", err, "rows", len(d.Snapshot))
		p.metrics.SnapshotPublished.WithLabelValues("error").Inc()
		return
	}
	p.metrics.SnapshotPublished.WithLabelValues("success").Inc()
	p.logger.Info("snapshot published", "rows", len(d.Snapshot))
}
