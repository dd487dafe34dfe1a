package pipeline

import (
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// assemble runs the pure transform stages and records snapshot gauges.
func (p *Pipeline) assemble(ds domain.Datasets) *domain.Dashboard {
	if dups := domain.DuplicateLatestRows(ds.Confirmed); dups > 0 {
		// Summed into the snapshot; only safe if upstream duplicates are additive.
		p.logger.Warn("duplicate location rows on latest date", "rows", dups)
		p.metrics.DuplicateLatestRows.Set(float64(dups))
	}

	d := domain.NewDashboard(ds)

	if len(d.Unmatched) > 0 {
		p.logger.Info("countries without country code", "count", len(d.Unmatched), "countries", d.Unmatched)
	}

	p.metrics.TotalConfirmed.Set(float64(d.Summary.TotalConfirmed))
	p.metrics.Countries.Set(float64(len(d.Table)))
	p.metrics.UnmatchedCountries.Set(float64(len(d.Unmatched)))
	if !d.Summary.LastUpdate.IsZero() {
		p.metrics.LastUpdateTimestamp.Set(float64(d.Summary.LastUpdate.Time().Unix()))
	}
	return d
}
