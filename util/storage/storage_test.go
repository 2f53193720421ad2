package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSigner struct {
	calls int
}

func (s *countingSigner) SignedURL(publicID string) (string, error) {
	s.calls++
	return fmt.Sprintf("https://cdn.example/%s?sig=%d", publicID, s.calls), nil
}

func TestSignedURLCacheReusesFreshEntries(t *testing.T) {
	signer := &countingSigner{}
	clock := clockwork.NewFakeClock()
	cache := NewSignedURLCache(signer, time.Hour, clock, nil)

	first, err := cache.Get("dataset_agricola/frijol/roya_01")
	require.NoError(t, err)
	second, err := cache.Get("dataset_agricola/frijol/roya_01")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, signer.calls)
}

func TestSignedURLCacheResignsAfterTTL(t *testing.T) {
	signer := &countingSigner{}
	clock := clockwork.NewFakeClock()
	cache := NewSignedURLCache(signer, time.Hour, clock, nil)

	_, err := cache.Get("asset")
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Second)
	_, err = cache.Get("asset")
	require.NoError(t, err)

	assert.Equal(t, 2, signer.calls)
}

func TestSignedURLCachePurgeDropsOnlyExpired(t *testing.T) {
	signer := &countingSigner{}
	clock := clockwork.NewFakeClock()
	cache := NewSignedURLCache(signer, time.Hour, clock, nil)

	_, err := cache.Get("old")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = cache.Get("fresh")
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	cache.Purge()

	_, err = cache.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, 2, signer.calls, "fresh entry must survive the purge")

	_, err = cache.Get("old")
	require.NoError(t, err)
	assert.Equal(t, 3, signer.calls, "old entry must have been purged")
}
