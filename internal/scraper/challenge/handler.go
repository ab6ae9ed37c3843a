package challenge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscout/internal/browser"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/models"
)

// Telemetry is the slice of the heartbeat reporter the handler needs.
type Telemetry interface {
	Report(ctx context.Context, status, message, jobURL string)
}

// ErrUnresolved is returned when the challenge survives every solve attempt.
// The current navigation is given up; the cycle continues.
var ErrUnresolved = fmt.Errorf("challenge unresolved after max attempts")

// Handler detects the interactive anti-bot challenge on the loaded document
// and drives the external solving action in a bounded retry loop.
type Handler struct {
	surface     browser.Surface
	telemetry   Telemetry
	solver      Solver
	maxAttempts int
	logger      types.Logger
}

// NewHandler creates a challenge handler. maxAttempts bounds the solve loop;
// values below 1 fall back to 5.
func NewHandler(surface browser.Surface, telemetry Telemetry, solver Solver, maxAttempts int) *Handler {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &Handler{
		surface:     surface,
		telemetry:   telemetry,
		solver:      solver,
		maxAttempts: maxAttempts,
		logger:      logging.GetGlobalLogger().WithField("component", "challenge"),
	}
}

// Detect evaluates three independent signals against the document: the page
// title, the challenge-platform form action, and the body text. Any one of
// them marks the page as challenged.
func Detect(rawHTML string) bool {
	lower := strings.ToLower(rawHTML)

	if m := strings.Index(lower, "<title>"); m != -1 {
		if end := strings.Index(lower[m:], "</title>"); end != -1 {
			title := lower[m+len("<title>") : m+end]
			if strings.Contains(title, "just a moment") {
				return true
			}
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		if doc.Find(`form[action*="cdn-cgi/challenge-platform"]`).Length() > 0 {
			return true
		}
	}

	return strings.Contains(rawHTML, "Checking your browser")
}

// Resolve re-checks the document and, while challenged, runs the solving
// action: wait, focus the surface, invoke the solver, wait again, re-detect.
// A clear page returns immediately. The loop is bounded; exhausting it
// reports challenge_unresolved and returns ErrUnresolved.
func (h *Handler) Resolve(ctx context.Context, settings *models.BotSettings) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rawHTML, err := h.surface.HTML()
		if err != nil {
			return fmt.Errorf("failed to read page for challenge check: %w", err)
		}

		if !Detect(rawHTML) {
			if attempt > 0 {
				h.telemetry.Report(ctx, models.StatusChallengePassed, "Challenge passed", "")
				h.logger.Info("Challenge passed", map[string]interface{}{
					"attempts": attempt,
				})
			}
			return nil
		}

		if attempt >= h.maxAttempts {
			h.telemetry.Report(ctx, models.StatusChallengeUnresolved,
				fmt.Sprintf("Challenge still present after %d attempts", attempt), "")
			return ErrUnresolved
		}

		h.telemetry.Report(ctx, models.StatusChallengeDetected, "Challenge detected, trying to solve", "")
		h.logger.Info("Challenge detected", map[string]interface{}{
			"attempt": attempt + 1,
			"solver":  h.solver.Name(),
		})

		if err := h.sleep(ctx, settings.ChallengeWaitBefore()); err != nil {
			return err
		}

		h.surface.Focus()
		if err := h.solver.Solve(ctx, h.surface); err != nil {
			// Solver failure is a retry signal, not a fatal error.
			h.logger.Warn("Solve attempt failed", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
		}

		if err := h.sleep(ctx, settings.ChallengeWaitAfter()); err != nil {
			return err
		}
	}
}

func (h *Handler) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
