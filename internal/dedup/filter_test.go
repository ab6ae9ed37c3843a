package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	calls []string
	visit bool
	err   error
}

func (s *stubChecker) ShouldVisit(ctx context.Context, canonicalURL string) (bool, error) {
	s.calls = append(s.calls, canonicalURL)
	return s.visit, s.err
}

func TestShouldVisitPassesCanonicalURLToChecker(t *testing.T) {
	checker := &stubChecker{visit: true}
	filter := NewFilter(checker, nil, time.Hour)

	got := filter.ShouldVisit(context.Background(),
		"https://www.upwork.com/jobs/~01abc?ref=feed#top")

	assert.True(t, got)
	assert.Equal(t, []string{"https://www.upwork.com/jobs/~01abc"}, checker.calls)
}

func TestShouldVisitRemoteDecline(t *testing.T) {
	checker := &stubChecker{visit: false}
	filter := NewFilter(checker, nil, time.Hour)

	assert.False(t, filter.ShouldVisit(context.Background(), "https://www.upwork.com/jobs/~01abc"))
}

func TestShouldVisitRemoteErrorSkips(t *testing.T) {
	checker := &stubChecker{visit: true, err: errors.New("collector unreachable")}
	filter := NewFilter(checker, nil, time.Hour)

	assert.False(t, filter.ShouldVisit(context.Background(), "https://www.upwork.com/jobs/~01abc"))
}

func TestSeenKeyShape(t *testing.T) {
	assert.Equal(t, "jobscout:seen:https://x/jobs/1", seenKey("https://x/jobs/1"))
}
