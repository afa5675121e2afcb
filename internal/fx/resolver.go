package fx

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vestcheck/vestcheck/internal/ratecache"
)

// Resolver answers rate lookups from the cache and falls back to the provider on a miss.
type Resolver struct {
	cache     *ratecache.Cache
	fetcher   Fetcher
	accessKey string
	// refreshUnavailable retries dates cached as unavailable when an access key is set.
	refreshUnavailable bool
	log                zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRefreshUnavailable makes cached "no rate" entries count as misses while an access key is configured.
func WithRefreshUnavailable(refresh bool) ResolverOption {
	return func(r *Resolver) { r.refreshUnavailable = refresh }
}

// NewResolver creates a Resolver. An empty accessKey disables the provider.
func NewResolver(cache *ratecache.Cache, fetcher Fetcher, accessKey string, log zerolog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:     cache,
		fetcher:   fetcher,
		accessKey: accessKey,
		log:       log.With().Str("component", "resolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the USDEUR quote of date, or nil when none is available.
// Every outcome except a fetch error is written to the cache.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (*decimal.Decimal, error) {
	key := ratecache.Key(date)

	cached, found, err := r.cache.Get(key)
	if err != nil {
		return nil, err
	}
	if found && (cached != nil || r.accessKey == "" || !r.refreshUnavailable) {
		return toDecimal(cached), nil
	}

	if r.accessKey == "" {
		r.log.Debug().Str("key", key).Msg("No access key, recording rate as unavailable")
		if err := r.cache.Put(key, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	quote, err := r.fetcher.Fetch(ctx, date, r.accessKey)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Put(key, &quote); err != nil {
		return nil, err
	}
	return toDecimal(&quote), nil
}

func toDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
