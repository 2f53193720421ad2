package reportmap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name    string
	reports []NormalizedReport
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) ([]NormalizedReport, error) {
	s.calls++
	return s.reports, s.err
}

func TestResolveShortCircuitsOnFirstHit(t *testing.T) {
	empty := &stubSource{name: "primary"}
	hit := &stubSource{name: "legacy", reports: []NormalizedReport{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}
	unreached := &stubSource{name: "flat"}

	rows, err := NewResolver(nil, empty, hit, unreached).Resolve(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, hit.calls)
	assert.Equal(t, 0, unreached.calls, "later sources must not be queried after a hit")
}

func TestResolveTreatsSourceErrorAsEmpty(t *testing.T) {
	broken := &stubSource{name: "primary", err: errors.New("relation does not exist")}
	hit := &stubSource{name: "legacy", reports: []NormalizedReport{{ID: "a"}}}

	rows, err := NewResolver(nil, broken, hit).Resolve(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].ID)
}

func TestResolveFailsWhenFinalFallbackErrors(t *testing.T) {
	first := &stubSource{name: "primary", err: errors.New("down")}
	last := &stubSource{name: "offline", err: errors.New("no such file")}

	rows, err := NewResolver(nil, first, last).Resolve(context.Background())

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestResolveAllEmptyYieldsEmptySet(t *testing.T) {
	rows, err := NewResolver(nil,
		&stubSource{name: "primary"},
		&stubSource{name: "legacy"},
	).Resolve(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestViewKeepsLastGoodSnapshotAcrossFailures(t *testing.T) {
	src := &stubSource{name: "primary", reports: []NormalizedReport{{ID: "a", Severity: SeverityLow}}}
	view := NewView(NewResolver(nil, src))

	res, err := view.Query(context.Background(), FilterState{})
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)

	// Source goes down: Query degrades to the stale snapshot.
	src.err = errors.New("down")
	src.reports = nil
	res, err = view.Query(context.Background(), FilterState{})
	require.NoError(t, err)
	assert.Len(t, res.Reports, 1)
}

func TestViewQueryFailsWithNoSnapshotAtAll(t *testing.T) {
	src := &stubSource{name: "primary", err: errors.New("down")}
	view := NewView(NewResolver(nil, src))

	_, err := view.Query(context.Background(), FilterState{})
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestViewReportsReturnsACopy(t *testing.T) {
	src := &stubSource{name: "primary", reports: []NormalizedReport{{ID: "a"}}}
	view := NewView(NewResolver(nil, src))
	require.NoError(t, view.Refresh(context.Background()))

	got := view.Reports()
	got[0].ID = "mutated"
	assert.Equal(t, "a", view.Reports()[0].ID)
}
