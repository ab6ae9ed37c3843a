package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobscout/internal/browser"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/internal/scraper/challenge"
	"jobscout/internal/scraper/extract"
	"jobscout/internal/settings"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// ErrLoginRedirect is the one cycle-ending condition: the target bounced the
// session to a login or account-security page. Cookies need human attention,
// so the process exits and the external supervisor takes over.
var ErrLoginRedirect = errors.New("login redirect detected")

// cycleCooldown is the fixed wait after an unhandled per-cycle error.
const cycleCooldown = 15 * time.Second

// skipDelay paces past candidates the duplicate filter rejects.
const skipDelay = 1 * time.Second

// extraSettle is the additional wait when a detail page looks under-loaded.
const extraSettle = 5 * time.Second

// SettingsSource supplies the remote tuning bag.
type SettingsSource interface {
	Get(ctx context.Context, botID string) (*models.BotSettings, settings.Outcome)
}

// Telemetry is the heartbeat reporter surface the orchestrator drives.
type Telemetry interface {
	Report(ctx context.Context, status, message, jobURL string)
}

// DuplicateFilter gates detail visits per candidate URL.
type DuplicateFilter interface {
	ShouldVisit(ctx context.Context, rawURL string) bool
}

// Ingestor relays extracted records to the collector.
type Ingestor interface {
	IngestJob(ctx context.Context, record *models.JobRecord) (int, error)
}

// ChallengeResolver clears anti-bot challenges on the loaded document.
type ChallengeResolver interface {
	Resolve(ctx context.Context, s *models.BotSettings) error
}

// FeedHarvester extracts candidate links from the loaded index page.
type FeedHarvester interface {
	Harvest(surface browser.Surface, maxCount int) []models.JobCandidate
}

// Options carries the static identity and paths the orchestrator needs.
type Options struct {
	BotID        string
	TargetBase   string
	DefaultQuery string
	DumpDir      string
}

// Orchestrator is the long-running control loop: navigate the feed, clear
// challenges, harvest candidates, then visit, extract and relay each one.
// Strictly sequential; the rendering surface cannot serve two navigations.
type Orchestrator struct {
	opts       Options
	surface    browser.Surface
	settings   SettingsSource
	telemetry  Telemetry
	dedup      DuplicateFilter
	ingestor   Ingestor
	challenges ChallengeResolver
	harvester  FeedHarvester
	logger     types.Logger
}

// New wires an orchestrator from its collaborators.
func New(opts Options, surface browser.Surface, src SettingsSource, telemetry Telemetry,
	dedup DuplicateFilter, ingestor Ingestor, challenges ChallengeResolver, harvester FeedHarvester) *Orchestrator {
	return &Orchestrator{
		opts:       opts,
		surface:    surface,
		settings:   src,
		telemetry:  telemetry,
		dedup:      dedup,
		ingestor:   ingestor,
		challenges: challenges,
		harvester:  harvester,
		logger:     logging.GetGlobalLogger().WithField("component", "orchestrator"),
	}
}

// Run executes scrape cycles until the context ends or a login redirect is
// detected. Every other per-cycle error is contained: reported as
// cycle_error, cooled down, retried.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := o.RunCycle(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrLoginRedirect):
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			o.logger.Error("Cycle failed", map[string]interface{}{
				"error": err.Error(),
			})
			o.telemetry.Report(ctx, models.StatusCycleError, err.Error(), "")
			if err := o.sleep(ctx, cycleCooldown); err != nil {
				return err
			}
		}
	}
}

// RunCycle performs one full feed-and-details pass.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	s, outcome := o.settings.Get(ctx, o.opts.BotID)
	o.logger.Debug("Settings resolved", map[string]interface{}{
		"outcome": string(outcome),
	})

	o.telemetry.Report(ctx, models.StatusNavigatingFeed, "Loading job feed", "")
	feedURL := o.buildFeedURL(s)
	if err := o.surface.Navigate(ctx, feedURL); err != nil {
		return fmt.Errorf("feed navigation failed: %w", err)
	}

	if err := o.sleep(ctx, s.FeedSettle()); err != nil {
		return err
	}
	if err := o.challenges.Resolve(ctx, s); err != nil {
		return fmt.Errorf("feed challenge: %w", err)
	}

	if o.loginRedirected() {
		o.telemetry.Report(ctx, models.StatusStuck, "login_detected", "")
		return ErrLoginRedirect
	}

	o.telemetry.Report(ctx, models.StatusScrapingFeed, "Harvesting feed links", "")
	candidates := o.harvester.Harvest(o.surface, s.JobCap())

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.visitCandidate(ctx, s, i, candidate)
	}

	o.telemetry.Report(ctx, models.StatusCycleComplete,
		fmt.Sprintf("Cycle finished, %d candidates", len(candidates)), "")

	idle := utils.RandomDuration(s.CycleDelayWindow())
	o.telemetry.Report(ctx, models.StatusIdle,
		fmt.Sprintf("Sleeping %s before next cycle", utils.FormatDuration(idle)), "")
	return o.sleep(ctx, idle)
}

// visitCandidate runs the per-candidate pipeline. All failures are local:
// they end this candidate, not the cycle.
func (o *Orchestrator) visitCandidate(ctx context.Context, s *models.BotSettings, index int, candidate models.JobCandidate) {
	canonical := utils.CanonicalURL(candidate.URL)
	log := o.logger.WithFields(map[string]interface{}{
		"index": index,
		"url":   canonical,
	})

	if !o.dedup.ShouldVisit(ctx, canonical) {
		log.Debug("Skipping duplicate")
		o.sleep(ctx, skipDelay)
		return
	}

	o.telemetry.Report(ctx, models.StatusVisitingJobDetail, candidate.Title, canonical)
	if err := o.surface.Navigate(ctx, canonical); err != nil {
		log.Warn("Detail navigation failed", map[string]interface{}{
			"error": err.Error(),
		})
		o.telemetry.Report(ctx, models.StatusJobLoadFailed, err.Error(), canonical)
		return
	}

	// Race the settle delay against challenge resolution: a clean page
	// progresses as soon as the timer fires, a challenged one starts
	// solving immediately. The loser is cancelled and safe to abandon.
	if err := o.settleOrResolve(ctx, s); err != nil {
		if errors.Is(err, challenge.ErrUnresolved) {
			log.Warn("Giving up on challenged detail page")
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Warn("Challenge resolution failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	rawHTML, err := o.surface.HTML()
	if err != nil {
		log.Warn("Failed to read detail page", map[string]interface{}{
			"error": err.Error(),
		})
		o.telemetry.Report(ctx, models.StatusJobLoadFailed, err.Error(), canonical)
		return
	}

	if len(rawHTML) < s.MinHTMLSize() {
		log.Debug("Detail page under size threshold, waiting extra", map[string]interface{}{
			"size": len(rawHTML),
		})
		if o.sleep(ctx, extraSettle) != nil {
			return
		}
		if refreshed, err := o.surface.HTML(); err == nil {
			rawHTML = refreshed
		}
	}

	o.telemetry.Report(ctx, models.StatusScrapingJob, candidate.Title, canonical)
	o.dumpMarkup(index, rawHTML)

	record := extract.Record(rawHTML, canonical, time.Now())
	if record.Title == "" {
		record.Title = candidate.Title
	}

	o.telemetry.Report(ctx, models.StatusSavingToDB, record.Title, canonical)
	inserted, err := o.ingestor.IngestJob(ctx, &record)
	if err != nil {
		// Transient-remote: the record is lost, the loop is not.
		log.Warn("Ingest failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		log.Info("Job relayed", map[string]interface{}{
			"inserted": inserted,
			"title":    record.Title,
		})
	}

	o.sleep(ctx, utils.RandomDuration(s.JobDelayWindow()))
}

// settleOrResolve races the randomized pre-scrape delay against challenge
// resolution, first completion wins.
func (o *Orchestrator) settleOrResolve(ctx context.Context, s *models.BotSettings) error {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.challenges.Resolve(raceCtx, s)
	}()

	delay := utils.RandomDuration(s.PreScrapeWindow())
	select {
	case <-time.After(delay):
		return nil
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) loginRedirected() bool {
	current := o.surface.CurrentURL()
	return strings.Contains(current, "/login") || strings.Contains(current, "account-security")
}

func (o *Orchestrator) buildFeedURL(s *models.BotSettings) string {
	feedURL := fmt.Sprintf("%s/nx/search/jobs/?page=1&per_page=%d&sort=recency",
		strings.TrimRight(o.opts.TargetBase, "/"), s.JobCap())

	query := s.Query()
	if query == "" {
		query = o.opts.DefaultQuery
	}
	if query != "" {
		feedURL += "&q=" + url.QueryEscape(query)
	}
	return feedURL
}

// dumpMarkup writes the raw page to a per-index diagnostics file, overwritten
// on each visit. Never read back by the bot.
func (o *Orchestrator) dumpMarkup(index int, rawHTML string) {
	if o.opts.DumpDir == "" {
		return
	}
	if err := os.MkdirAll(o.opts.DumpDir, 0o755); err != nil {
		o.logger.Warn("Failed to create dump dir", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	path := filepath.Join(o.opts.DumpDir, fmt.Sprintf("job_detail_dump_%d.html", index))
	if err := os.WriteFile(path, []byte(rawHTML), 0o644); err != nil {
		o.logger.Warn("Failed to write dump file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
