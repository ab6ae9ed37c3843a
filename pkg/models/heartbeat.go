package models

import "time"

// Orchestrator status values carried on the heartbeat stream. These are the
// only operator-visible failure channel, so the vocabulary is fixed.
const (
	StatusBooting           = "booting"
	StatusNavigatingFeed    = "navigating_feed"
	StatusScrapingFeed      = "scraping_feed"
	StatusVisitingJobDetail = "visiting_job_detail"
	StatusJobLoadFailed     = "job_load_failed"
	StatusScrapingJob       = "scraping_job"
	StatusSavingToDB        = "saving_to_db"
	StatusCycleComplete     = "cycle_complete"
	StatusIdle              = "idle"
	StatusCycleError        = "cycle_error"
	StatusStuck             = "stuck"

	StatusChallengeDetected   = "challenge_detected"
	StatusChallengePassed     = "challenge_passed"
	StatusChallengeUnresolved = "challenge_unresolved"
)

// Heartbeat is the liveness/progress payload posted to the collector.
type Heartbeat struct {
	BotID     string    `json:"botId"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	JobURL    string    `json:"jobUrl"`
	Timestamp time.Time `json:"timestamp"`
}

// SettingsResponse is the envelope returned by the collector settings endpoint.
type SettingsResponse struct {
	Success bool        `json:"success"`
	Data    BotSettings `json:"data"`
}

// ShouldVisitResponse is the envelope returned by the duplicate-check endpoint.
type ShouldVisitResponse struct {
	Data struct {
		ShouldVisit bool `json:"shouldVisit"`
	} `json:"data"`
}

// IngestResponse is the envelope returned by the job ingest endpoint.
type IngestResponse struct {
	Inserted int `json:"inserted"`
}
