// Package ratecache persists historical exchange rates by date.
// Entries never expire: a rate published for a past date does not change.
package ratecache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// keyFormat renders dates as full ISO-8601 UTC timestamps, e.g. 2023-01-15T00:00:00.000Z.
const keyFormat = "2006-01-02T15:04:05.000Z"

// Key returns the cache key of a date.
func Key(t time.Time) string {
	return t.UTC().Format(keyFormat)
}

// Store is the durable backing of a Cache.
// A nil rate records a lookup that produced no rate.
type Store interface {
	Get(key string) (rate *float64, found bool, err error)
	Put(key string, rate *float64) error
	Flush() error
	Close() error
}

// Cache is a read-through, write-back table of rates keyed by date.
// It is used by one goroutine at a time.
type Cache struct {
	store Store
	log   zerolog.Logger
}

// New wraps a store.
func New(store Store, log zerolog.Logger) *Cache {
	return &Cache{
		store: store,
		log:   log.With().Str("component", "ratecache").Logger(),
	}
}

// Backend names a Store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Open opens the store at path, creating its directory if needed.
func Open(backend Backend, path string, log zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	var (
		store Store
		err   error
	)
	switch backend {
	case BackendJSON:
		store, err = OpenJSON(path)
	case BackendSQLite:
		store, err = OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s rate cache %s: %w", backend, path, err)
	}
	log.Debug().Str("backend", string(backend)).Str("path", path).Msg("Rate cache opened")
	return New(store, log), nil
}

// Get returns the cached rate of a date key. found is false when the key was never stored;
// a found nil rate means the lookup was made and produced nothing.
func (c *Cache) Get(key string) (rate *float64, found bool, err error) {
	rate, found, err = c.store.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("reading rate cache %s: %w", key, err)
	}
	c.log.Debug().Str("key", key).Bool("hit", found).Msg("Rate cache lookup")
	return rate, found, nil
}

// Put stores a rate, or nil, under key and persists it immediately.
func (c *Cache) Put(key string, rate *float64) error {
	if err := c.store.Put(key, rate); err != nil {
		return fmt.Errorf("writing rate cache %s: %w", key, err)
	}
	return c.Flush()
}

// Flush persists all pending writes.
func (c *Cache) Flush() error {
	if err := c.store.Flush(); err != nil {
		return fmt.Errorf("flushing rate cache: %w", err)
	}
	return nil
}

// Close flushes and releases the store. It is safe to defer on every exit path.
func (c *Cache) Close() error {
	flushErr := c.store.Flush()
	closeErr := c.store.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing rate cache: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing rate cache: %w", closeErr)
	}
	return nil
}
