package heartbeat

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Sender is the collector side of the reporter.
type Sender interface {
	SendHeartbeat(ctx context.Context, hb *models.Heartbeat) error
}

// IntervalSource supplies the tick cadence for the background ping.
type IntervalSource func(ctx context.Context) time.Duration

// Snapshot is the last-known reporter state, also served on the local status
// endpoint.
type Snapshot struct {
	BotID     string    `json:"botId"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	JobURL    string    `json:"jobUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reporter emits orchestrator status to the collector, fire-and-forget. It
// keeps the last reported {status, message, jobUrl} so the periodic
// zero-argument ping repeats the latest state as a pure keep-alive. Posts are
// rate limited; an over-limit event updates local state but is not sent.
type Reporter struct {
	botID   string
	sender  Sender
	limiter *rate.Limiter
	logger  types.Logger

	mu        sync.Mutex
	status    string
	message   string
	jobURL    string
	updatedAt time.Time
}

// NewReporter creates a reporter for the bot.
func NewReporter(botID string, sender Sender) *Reporter {
	return &Reporter{
		botID:  botID,
		sender: sender,
		// One sustained post per second with room for short bursts; the
		// cycle emits a handful of events per candidate.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logging.GetGlobalLogger().WithField("component", "heartbeat"),
		status:  models.StatusBooting,
	}
}

// Report records and transmits a status change. Empty message or jobURL keep
// the last-known value; jobURL is canonicalized before it is stored or sent.
// Failures are logged, never propagated.
func (r *Reporter) Report(ctx context.Context, status, message, jobURL string) {
	r.mu.Lock()
	r.status = status
	if message != "" {
		r.message = message
	}
	if jobURL != "" {
		r.jobURL = utils.CanonicalURL(jobURL)
	}
	r.updatedAt = time.Now()
	hb := r.payloadLocked()
	r.mu.Unlock()

	r.send(ctx, hb)
}

// Ping re-sends the last-known state without changing it. This is the
// keep-alive signal, distinct from a state change.
func (r *Reporter) Ping(ctx context.Context) {
	r.mu.Lock()
	hb := r.payloadLocked()
	r.mu.Unlock()

	r.send(ctx, hb)
}

// Snapshot returns the last-known state.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		BotID:     r.botID,
		Status:    r.status,
		Message:   r.message,
		JobURL:    r.jobURL,
		UpdatedAt: r.updatedAt,
	}
}

// Run pings the collector on the configured interval until the context ends.
// It runs beside the cycle loop, never inside it, so a stalled cycle still
// looks alive while a dead process goes silent.
func (r *Reporter) Run(ctx context.Context, interval IntervalSource) {
	for {
		wait := interval(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			r.Ping(ctx)
		}
	}
}

func (r *Reporter) payloadLocked() *models.Heartbeat {
	return &models.Heartbeat{
		BotID:     r.botID,
		Status:    r.status,
		Message:   r.message,
		JobURL:    r.jobURL,
		Timestamp: time.Now(),
	}
}

func (r *Reporter) send(ctx context.Context, hb *models.Heartbeat) {
	if !r.limiter.Allow() {
		r.logger.Debug("Heartbeat suppressed by rate limit", map[string]interface{}{
			"status": hb.Status,
		})
		return
	}

	if err := r.sender.SendHeartbeat(ctx, hb); err != nil {
		r.logger.Warn("Heartbeat failed", map[string]interface{}{
			"event_id": utils.GenerateEventID(),
			"status":   hb.Status,
			"error":    err.Error(),
		})
		return
	}

	r.logger.Debug("Heartbeat sent", map[string]interface{}{
		"status":  hb.Status,
		"message": hb.Message,
	})
}
