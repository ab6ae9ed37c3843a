package models

import "time"

// BotSettings is the remote-sourced tuning bag for the scrape cycle. Every
// field is optional on the wire; consumers go through the accessor methods,
// which apply local defaults, so the empty object is always a usable value.
type BotSettings struct {
	MaxJobsPerCycle int    `json:"maxJobsPerCycle,omitempty"`
	SearchQuery     string `json:"searchQuery,omitempty"`

	FeedSettleMs    int `json:"feedSettleMs,omitempty"`
	PreScrapeMinMs  int `json:"preScrapeMinMs,omitempty"`
	PreScrapeMaxMs  int `json:"preScrapeMaxMs,omitempty"`
	JobDelayMinMs   int `json:"jobDelayMinMs,omitempty"`
	JobDelayMaxMs   int `json:"jobDelayMaxMs,omitempty"`
	CycleDelayMinMs int `json:"cycleDelayMinMs,omitempty"`
	CycleDelayMaxMs int `json:"cycleDelayMaxMs,omitempty"`

	ChallengeWaitBeforeMs int `json:"challengeWaitBeforeMs,omitempty"`
	ChallengeWaitAfterMs  int `json:"challengeWaitAfterMs,omitempty"`

	MinHTMLLength       int `json:"minHTMLLength,omitempty"`
	HeartbeatIntervalMs int `json:"heartbeatIntervalMs,omitempty"`
}

func msOrDefault(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// JobCap bounds how many candidates one cycle may process.
func (s *BotSettings) JobCap() int {
	if s == nil || s.MaxJobsPerCycle <= 0 {
		return 50
	}
	return s.MaxJobsPerCycle
}

// Query returns the feed search query, empty when unset.
func (s *BotSettings) Query() string {
	if s == nil {
		return ""
	}
	return s.SearchQuery
}

// FeedSettle is how long to wait after loading the feed page.
func (s *BotSettings) FeedSettle() time.Duration {
	if s == nil {
		return 8 * time.Second
	}
	return msOrDefault(s.FeedSettleMs, 8*time.Second)
}

// PreScrapeWindow is the randomized settle window raced against challenge
// resolution on a detail page.
func (s *BotSettings) PreScrapeWindow() (time.Duration, time.Duration) {
	if s == nil {
		return 8 * time.Second, 12 * time.Second
	}
	return msOrDefault(s.PreScrapeMinMs, 8*time.Second), msOrDefault(s.PreScrapeMaxMs, 12*time.Second)
}

// JobDelayWindow is the randomized pause between detail visits.
func (s *BotSettings) JobDelayWindow() (time.Duration, time.Duration) {
	if s == nil {
		return 2 * time.Second, 5 * time.Second
	}
	return msOrDefault(s.JobDelayMinMs, 2*time.Second), msOrDefault(s.JobDelayMaxMs, 5*time.Second)
}

// CycleDelayWindow is the randomized idle pause between cycles.
func (s *BotSettings) CycleDelayWindow() (time.Duration, time.Duration) {
	if s == nil {
		return 20 * time.Second, 40 * time.Second
	}
	return msOrDefault(s.CycleDelayMinMs, 20*time.Second), msOrDefault(s.CycleDelayMaxMs, 40*time.Second)
}

// ChallengeWaitBefore is the pause before invoking the solving action.
func (s *BotSettings) ChallengeWaitBefore() time.Duration {
	if s == nil {
		return 3 * time.Second
	}
	return msOrDefault(s.ChallengeWaitBeforeMs, 3*time.Second)
}

// ChallengeWaitAfter is the pause after the solving action, before re-checking.
func (s *BotSettings) ChallengeWaitAfter() time.Duration {
	if s == nil {
		return 5 * time.Second
	}
	return msOrDefault(s.ChallengeWaitAfterMs, 5*time.Second)
}

// MinHTMLSize is the length below which a detail page is treated as not fully
// loaded yet.
func (s *BotSettings) MinHTMLSize() int {
	if s == nil || s.MinHTMLLength <= 0 {
		return 10000
	}
	return s.MinHTMLLength
}

// HeartbeatInterval is the cadence of the background keep-alive ping.
func (s *BotSettings) HeartbeatInterval() time.Duration {
	if s == nil {
		return 30 * time.Second
	}
	return msOrDefault(s.HeartbeatIntervalMs, 30*time.Second)
}
