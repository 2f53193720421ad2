package reportmap

import (
	"context"
	"errors"
	"log"

	"github.com/phytoscan/phytoscan-api/internal/observability"
)

// ErrAllSourcesFailed is returned when the final fallback source errors
// and no earlier source produced rows. Distinct from an empty result,
// which is a valid outcome.
var ErrAllSourcesFailed = errors.New("could not load reports")

// Source is one backend shape the resolver can read reports from. Fetch
// returns the normalized rows it found; an empty slice with a nil error
// means the source is reachable but holds nothing.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]NormalizedReport, error)
}

// Resolver tries its sources in order and short-circuits on the first one
// that yields rows. A source error is logged and treated as zero rows so
// the chain can advance.
type Resolver struct {
	sources []Source
	metrics *observability.Metrics
}

func NewResolver(metrics *observability.Metrics, sources ...Source) *Resolver {
	return &Resolver{sources: sources, metrics: metrics}
}

// Resolve walks the fallback chain. Every returned report has been through
// the country classifier.
func (rs *Resolver) Resolve(ctx context.Context) ([]NormalizedReport, error) {
	for i, src := range rs.sources {
		rows, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("report source %s failed: %v", src.Name(), err)
			rs.metrics.ObserveResolverSource(src.Name(), "error")
			if i == len(rs.sources)-1 {
				rs.metrics.ObserveResolverFailure()
				return nil, ErrAllSourcesFailed
			}
			continue
		}
		if len(rows) == 0 {
			rs.metrics.ObserveResolverSource(src.Name(), "empty")
			continue
		}
		rs.metrics.ObserveResolverSource(src.Name(), "hit")
		for j := range rows {
			rows[j] = Classify(rows[j])
		}
		return rows, nil
	}
	return []NormalizedReport{}, nil
}
