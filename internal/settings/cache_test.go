package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

type stubFetcher struct {
	calls    int
	settings *models.BotSettings
	err      error
}

func (s *stubFetcher) FetchSettings(ctx context.Context, botID string) (*models.BotSettings, error) {
	s.calls++
	return s.settings, s.err
}

func TestGetFreshHitWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{settings: &models.BotSettings{MaxJobsPerCycle: 20}}
	cache := NewCache(fetcher)

	first, outcome := cache.Get(context.Background(), "bot-1")
	assert.Equal(t, OutcomeRefreshed, outcome)
	assert.Equal(t, 20, first.JobCap())

	second, outcome := cache.Get(context.Background(), "bot-1")
	assert.Equal(t, OutcomeFreshHit, outcome)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestGetRefreshedAfterExpiry(t *testing.T) {
	fetcher := &stubFetcher{settings: &models.BotSettings{}}
	cache := NewCache(fetcher)

	cache.Get(context.Background(), "bot-1")
	cache.fetchedAt = cache.fetchedAt.Add(-cacheTTL)

	_, outcome := cache.Get(context.Background(), "bot-1")
	assert.Equal(t, OutcomeRefreshed, outcome)
	assert.Equal(t, 2, fetcher.calls)
}

func TestGetStaleFallbackOnFetchError(t *testing.T) {
	fetcher := &stubFetcher{settings: &models.BotSettings{SearchQuery: "golang"}}
	cache := NewCache(fetcher)

	cached, _ := cache.Get(context.Background(), "bot-1")
	cache.fetchedAt = cache.fetchedAt.Add(-cacheTTL)
	fetcher.settings = nil
	fetcher.err = errors.New("collector unreachable")

	got, outcome := cache.Get(context.Background(), "bot-1")
	assert.Equal(t, OutcomeStaleFallback, outcome)
	assert.Same(t, cached, got)
	assert.Equal(t, "golang", got.Query())
}

func TestGetEmptyFallbackBeforeFirstSuccess(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("collector unreachable")}
	cache := NewCache(fetcher)

	got, outcome := cache.Get(context.Background(), "bot-1")
	assert.Equal(t, OutcomeEmptyFallback, outcome)
	require.NotNil(t, got)

	// Defaults still apply through the accessors.
	assert.Equal(t, 50, got.JobCap())
	assert.Equal(t, "", got.Query())
}
