package fx

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestcheck/vestcheck/internal/ratecache"
)

type countingFetcher struct {
	calls int
	quote float64
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, date time.Time, accessKey string) (float64, error) {
	f.calls++
	return f.quote, f.err
}

func openCache(t *testing.T, path string) *ratecache.Cache {
	t.Helper()
	c, err := ratecache.Open(ratecache.BackendJSON, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResolve_FetchesOnceThenCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	fetcher := &countingFetcher{quote: 0.9}
	r := NewResolver(openCache(t, path), fetcher, "key", zerolog.Nop())

	rate, err := r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, "0.9", rate.String())

	_, err = r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	// Next run, same cache file.
	next := NewResolver(openCache(t, path), fetcher, "key", zerolog.Nop())
	rate, err = next.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Equal(t, "0.9", rate.String())
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolve_NoAccessKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	fetcher := &countingFetcher{quote: 0.9}
	cache := openCache(t, path)
	r := NewResolver(cache, fetcher, "", zerolog.Nop())

	rate, err := r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Nil(t, rate)
	assert.Equal(t, 0, fetcher.calls)

	cached, found, err := cache.Get(ratecache.Key(vestDate))
	require.NoError(t, err)
	assert.True(t, found, "unavailability is recorded")
	assert.Nil(t, cached)
}

func TestResolve_CachedUnavailableMasksKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	fetcher := &countingFetcher{quote: 0.9}
	cache := openCache(t, path)
	require.NoError(t, cache.Put(ratecache.Key(vestDate), nil))

	r := NewResolver(cache, fetcher, "key", zerolog.Nop())
	rate, err := r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Nil(t, rate)
	assert.Equal(t, 0, fetcher.calls)
}

func TestResolve_RefreshUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	fetcher := &countingFetcher{quote: 0.9}
	cache := openCache(t, path)
	require.NoError(t, cache.Put(ratecache.Key(vestDate), nil))

	r := NewResolver(cache, fetcher, "key", zerolog.Nop(), WithRefreshUnavailable(true))
	rate, err := r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 1, fetcher.calls)

	// Cached numbers are never refetched.
	_, err = r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolve_RefreshWithoutKeyKeepsCache(t *testing.T) {
	cache := openCache(t, filepath.Join(t.TempDir(), "rates.json"))
	require.NoError(t, cache.Put(ratecache.Key(vestDate), nil))
	fetcher := &countingFetcher{quote: 0.9}

	r := NewResolver(cache, fetcher, "", zerolog.Nop(), WithRefreshUnavailable(true))
	rate, err := r.Resolve(context.Background(), vestDate)
	require.NoError(t, err)
	assert.Nil(t, rate)
	assert.Equal(t, 0, fetcher.calls)
}

func TestResolve_FetchErrorNotCached(t *testing.T) {
	cache := openCache(t, filepath.Join(t.TempDir(), "rates.json"))
	fetcher := &countingFetcher{err: errors.Join(ErrRateFetch, errors.New("boom"))}
	r := NewResolver(cache, fetcher, "key", zerolog.Nop())

	_, err := r.Resolve(context.Background(), vestDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateFetch)

	_, found, err := cache.Get(ratecache.Key(vestDate))
	require.NoError(t, err)
	assert.False(t, found)
}
