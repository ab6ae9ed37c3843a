package settings

import (
	"context"
	"sync"
	"time"

	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/models"
)

// cacheTTL is the freshness window for remote settings.
const cacheTTL = 30 * time.Second

// Outcome describes how a Get call was satisfied. Production callers ignore
// it; tests and diagnostics assert on it.
type Outcome string

const (
	// OutcomeFreshHit means the cached value was still within the TTL.
	OutcomeFreshHit Outcome = "fresh-hit"
	// OutcomeRefreshed means a remote fetch succeeded and replaced the cache.
	OutcomeRefreshed Outcome = "refreshed"
	// OutcomeStaleFallback means the fetch failed and the last good value was reused.
	OutcomeStaleFallback Outcome = "stale-fallback"
	// OutcomeEmptyFallback means the fetch failed and nothing was ever cached.
	OutcomeEmptyFallback Outcome = "empty-fallback"
)

// Fetcher is the remote side of the cache.
type Fetcher interface {
	FetchSettings(ctx context.Context, botID string) (*models.BotSettings, error)
}

// Cache memoizes remote bot settings with a fixed freshness window. It never
// returns an error: on fetch failure the last good value is reused
// indefinitely, and before any fetch has succeeded an empty settings object is
// returned (whose accessors supply local defaults).
type Cache struct {
	fetcher Fetcher
	logger  types.Logger

	mu        sync.Mutex
	cached    *models.BotSettings
	fetchedAt time.Time
}

// NewCache creates a settings cache around the given fetcher.
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logging.GetGlobalLogger().WithField("component", "settings"),
	}
}

// Get returns the current settings for the bot plus the outcome of the call.
func (c *Cache) Get(ctx context.Context, botID string) (*models.BotSettings, Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < cacheTTL {
		return c.cached, OutcomeFreshHit
	}

	fetched, err := c.fetcher.FetchSettings(ctx, botID)
	if err == nil && fetched != nil {
		c.cached = fetched
		c.fetchedAt = time.Now()
		c.logger.Debug("Settings refreshed", map[string]interface{}{
			"bot_id": botID,
		})
		return c.cached, OutcomeRefreshed
	}

	if err != nil {
		c.logger.Warn("Settings fetch failed", map[string]interface{}{
			"bot_id": botID,
			"error":  err.Error(),
		})
	}

	if c.cached != nil {
		return c.cached, OutcomeStaleFallback
	}
	return &models.BotSettings{}, OutcomeEmptyFallback
}
