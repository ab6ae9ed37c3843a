package challenge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/internal/browser"
	"jobscout/pkg/models"
)

const challengedPage = `<html><head><title>Just a moment...</title></head>
<body>Checking your browser before accessing the site.</body></html>`

const clearPage = `<html><head><title>Job Feed</title></head><body>listings</body></html>`

// scriptedSurface serves a fixed sequence of HTML reads.
type scriptedSurface struct {
	pages []string
	reads int
	focus int
}

func (s *scriptedSurface) Navigate(ctx context.Context, url string) error { return nil }

func (s *scriptedSurface) HTML() (string, error) {
	if s.reads >= len(s.pages) {
		return s.pages[len(s.pages)-1], nil
	}
	page := s.pages[s.reads]
	s.reads++
	return page, nil
}

func (s *scriptedSurface) Eval(js string) error { return nil }

func (s *scriptedSurface) CurrentURL() string { return "" }

func (s *scriptedSurface) Focus() { s.focus++ }

func (s *scriptedSurface) Close() error { return nil }

type countingSolver struct {
	calls int
	err   error
}

func (s *countingSolver) Solve(ctx context.Context, surface browser.Surface) error {
	s.calls++
	return s.err
}

func (s *countingSolver) Name() string { return "counting" }

type recordingTelemetry struct {
	statuses []string
}

func (r *recordingTelemetry) Report(ctx context.Context, status, message, jobURL string) {
	r.statuses = append(r.statuses, status)
}

// fastSettings keeps the wait steps near-instant.
func fastSettings() *models.BotSettings {
	return &models.BotSettings{
		ChallengeWaitBeforeMs: 1,
		ChallengeWaitAfterMs:  1,
	}
}

func TestDetect(t *testing.T) {
	assert.True(t, Detect(challengedPage))
	assert.True(t, Detect(`<html><body>
		<form action="/cdn-cgi/challenge-platform/h/b/orchestrate"></form></body></html>`))
	assert.False(t, Detect(clearPage))
	assert.False(t, Detect(""))
}

func TestResolveClearPageIsSilent(t *testing.T) {
	surface := &scriptedSurface{pages: []string{clearPage}}
	solver := &countingSolver{}
	telemetry := &recordingTelemetry{}
	h := NewHandler(surface, telemetry, solver, 5)

	err := h.Resolve(context.Background(), fastSettings())

	require.NoError(t, err)
	assert.Zero(t, solver.calls)
	assert.Empty(t, telemetry.statuses)
}

func TestResolveSolvesAfterRetries(t *testing.T) {
	// Challenged twice, then clear: the solver must run exactly twice.
	surface := &scriptedSurface{pages: []string{challengedPage, challengedPage, clearPage}}
	solver := &countingSolver{}
	telemetry := &recordingTelemetry{}
	h := NewHandler(surface, telemetry, solver, 5)

	err := h.Resolve(context.Background(), fastSettings())

	require.NoError(t, err)
	assert.Equal(t, 2, solver.calls)
	assert.Equal(t, 2, surface.focus)
	assert.Equal(t, []string{
		models.StatusChallengeDetected,
		models.StatusChallengeDetected,
		models.StatusChallengePassed,
	}, telemetry.statuses)
}

func TestResolveGivesUpAfterMaxAttempts(t *testing.T) {
	surface := &scriptedSurface{pages: []string{challengedPage}}
	solver := &countingSolver{}
	telemetry := &recordingTelemetry{}
	h := NewHandler(surface, telemetry, solver, 2)

	err := h.Resolve(context.Background(), fastSettings())

	require.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, 2, solver.calls)
	assert.Equal(t, models.StatusChallengeUnresolved,
		telemetry.statuses[len(telemetry.statuses)-1])
}

func TestResolveSolverErrorIsRetried(t *testing.T) {
	surface := &scriptedSurface{pages: []string{challengedPage, clearPage}}
	solver := &countingSolver{err: assert.AnError}
	telemetry := &recordingTelemetry{}
	h := NewHandler(surface, telemetry, solver, 5)

	err := h.Resolve(context.Background(), fastSettings())

	require.NoError(t, err)
	assert.Equal(t, 1, solver.calls)
}

func TestResolveHonorsContextCancellation(t *testing.T) {
	surface := &scriptedSurface{pages: []string{challengedPage}}
	h := NewHandler(surface, &recordingTelemetry{}, &countingSolver{}, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Resolve(ctx, fastSettings())
	require.ErrorIs(t, err, context.Canceled)
}
