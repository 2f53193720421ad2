package reportmap

import (
	"context"
	"sync"
)

// View holds the latest resolved snapshot. Refreshes carry a monotonic
// sequence token; a refresh that finishes after a newer one has already
// been applied is discarded, so overlapping refreshes cannot roll the
// snapshot backwards.
type View struct {
	resolver *Resolver

	mu      sync.Mutex
	seq     uint64
	applied uint64
	reports []NormalizedReport
}

func NewView(resolver *Resolver) *View {
	return &View{resolver: resolver}
}

// Refresh resolves a fresh snapshot and installs it unless a newer
// refresh already completed.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	token := v.seq
	v.mu.Unlock()

	reports, err := v.resolver.Resolve(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token <= v.applied {
		// Superseded by a refresh that started later and finished first.
		return nil
	}
	if err != nil {
		return err
	}
	v.applied = token
	v.reports = reports
	return nil
}

// Reports returns a copy of the current snapshot.
func (v *View) Reports() []NormalizedReport {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]NormalizedReport, len(v.reports))
	copy(out, v.reports)
	return out
}

// Query refreshes the snapshot and applies the filter state to it. A
// refresh failure with an existing snapshot degrades to the stale data;
// with no snapshot at all it surfaces the resolver error.
func (v *View) Query(ctx context.Context, f FilterState) (FilterResult, error) {
	err := v.Refresh(ctx)

	v.mu.Lock()
	hasSnapshot := v.applied > 0
	v.mu.Unlock()

	if err != nil && !hasSnapshot {
		return FilterResult{}, err
	}
	return Apply(v.Reports(), f), nil
}
