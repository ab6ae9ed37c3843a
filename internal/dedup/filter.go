package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/utils"
)

// Checker is the remote duplicate-check endpoint.
type Checker interface {
	ShouldVisit(ctx context.Context, canonicalURL string) (bool, error)
}

// Filter gates detail scraping per listing URL. The policy is bias-toward-
// skip: any remote or cache failure answers false, trading recall for never
// re-scraping work the collector already has.
//
// An optional redis cache remembers URLs the collector declined, so repeat
// feed appearances within the TTL skip without a round trip.
type Filter struct {
	checker Checker
	cache   *redis.Client
	seenTTL time.Duration
	logger  types.Logger
}

// NewFilter creates a duplicate filter. cache may be nil, which disables the
// local seen-cache and makes every decision remote.
func NewFilter(checker Checker, cache *redis.Client, seenTTL time.Duration) *Filter {
	if seenTTL <= 0 {
		seenTTL = 24 * time.Hour
	}
	return &Filter{
		checker: checker,
		cache:   cache,
		seenTTL: seenTTL,
		logger:  logging.GetGlobalLogger().WithField("component", "dedup"),
	}
}

// ShouldVisit reports whether the detail page behind the URL is worth
// scraping. The URL is canonicalized first; the same canonical form is the
// ingest identity, so the two must never diverge.
func (f *Filter) ShouldVisit(ctx context.Context, rawURL string) bool {
	canonical := utils.CanonicalURL(rawURL)

	if f.cache != nil {
		seen, err := f.cache.Exists(ctx, seenKey(canonical)).Result()
		if err != nil {
			f.logger.Warn("Seen-cache lookup failed", map[string]interface{}{
				"url":   canonical,
				"error": err.Error(),
			})
		} else if seen > 0 {
			f.logger.Debug("Skipping cached duplicate", map[string]interface{}{
				"url": canonical,
			})
			return false
		}
	}

	visit, err := f.checker.ShouldVisit(ctx, canonical)
	if err != nil {
		f.logger.Warn("Duplicate check failed, skipping", map[string]interface{}{
			"url":   canonical,
			"error": err.Error(),
		})
		return false
	}

	if !visit && f.cache != nil {
		if err := f.cache.Set(ctx, seenKey(canonical), 1, f.seenTTL).Err(); err != nil {
			f.logger.Warn("Seen-cache store failed", map[string]interface{}{
				"url":   canonical,
				"error": err.Error(),
			})
		}
	}

	return visit
}

func seenKey(canonicalURL string) string {
	return "jobscout:seen:" + canonicalURL
}
