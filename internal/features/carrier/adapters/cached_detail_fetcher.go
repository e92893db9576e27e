package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fleet-route-api/internal/core/cache"
	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"

	"go.uber.org/zap"
)

const detailCachePrefix = "colis_detail:"

// CachedDetailFetcher serves package details from the cache and fetches misses through next.
// Only successful details are stored.
type CachedDetailFetcher struct {
	next  ports.DetailFetcher
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedDetailFetcher creates a new CachedDetailFetcher.
func NewCachedDetailFetcher(next ports.DetailFetcher, c cache.Cache, ttl time.Duration) *CachedDetailFetcher {
	return &CachedDetailFetcher{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   logger.Named("carrier.detail_cache"),
	}
}

func detailCacheKey(ref domain.PackageReference) string {
	return detailCachePrefix + string(ref)
}

// FetchDetails implements ports.DetailFetcher.
func (f *CachedDetailFetcher) FetchDetails(ctx context.Context, refs []domain.PackageReference, token domain.SessionToken) map[domain.PackageReference]domain.DetailResult {
	results := make(map[domain.PackageReference]domain.DetailResult, len(refs))
	var misses []domain.PackageReference

	for _, ref := range refs {
		if _, done := results[ref]; done {
			continue
		}
		if detail, ok := f.lookup(ctx, ref); ok {
			results[ref] = domain.DetailSuccess(detail)
			continue
		}
		// Placeholder keeps duplicates out of the miss list.
		results[ref] = domain.DetailResult{}
		misses = append(misses, ref)
	}

	if len(misses) == 0 {
		return results
	}

	fetched := f.next.FetchDetails(ctx, misses, token)
	for _, ref := range misses {
		res, ok := fetched[ref]
		if !ok {
			res = domain.DetailFailure("no result returned")
		}
		results[ref] = res

		if res.OK() {
			f.store(ctx, res.Detail)
		}
	}

	f.log.Debug("Detail cache lookup",
		zap.Int("requested", len(results)),
		zap.Int("hits", len(results)-len(misses)),
		zap.Int("misses", len(misses)),
	)

	return results
}

// lookup returns a cached detail. Any cache failure counts as a miss.
func (f *CachedDetailFetcher) lookup(ctx context.Context, ref domain.PackageReference) (*domain.PackageDetail, bool) {
	data, err := f.cache.Get(ctx, detailCacheKey(ref))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			f.log.Warn("Detail cache read failed", zap.String("ref", string(ref)), zap.Error(err))
		}
		return nil, false
	}

	var detail domain.PackageDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		f.log.Warn("Dropping undecodable cached detail", zap.String("ref", string(ref)), zap.Error(err))
		_ = f.cache.Delete(ctx, detailCacheKey(ref))
		return nil, false
	}
	return &detail, true
}

func (f *CachedDetailFetcher) store(ctx context.Context, detail *domain.PackageDetail) {
	data, err := json.Marshal(detail)
	if err != nil {
		f.log.Warn("Failed to marshal detail", zap.String("ref", string(detail.Reference)), zap.Error(err))
		return
	}
	if err := f.cache.Set(ctx, detailCacheKey(detail.Reference), data, f.ttl); err != nil {
		f.log.Warn("Detail cache write failed", zap.String("ref", string(detail.Reference)), zap.Error(err))
	}
}
