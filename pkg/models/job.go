package models

import "time"

// JobCandidate is a single link discovered on the listing feed. It only lives
// for the duration of one scrape cycle.
type JobCandidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// JobRecord is a fully extracted job posting as relayed to the collector.
// Field names match the collector's ingest contract. Every field keeps its
// zero value when the source pattern is absent from the page.
type JobRecord struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`

	MainCategory    string `json:"mainCategory"`
	ExperienceLevel string `json:"experienceLevel"`
	ProjectType     string `json:"projectType"`
	PricingModel    string `json:"pricingModel"`

	MinRange         float64 `json:"minRange"`
	MaxRange         float64 `json:"maxRange"`
	RequiredConnects int     `json:"requiredConnects"`

	ClientCountry           string  `json:"clientCountry"`
	ClientCity              string  `json:"clientCity"`
	ClientSpend             float64 `json:"clientSpend"`
	ClientAverageHourlyRate float64 `json:"clientAverageHourlyRate"`
	ClientJobsPosted        int     `json:"clientJobsPosted"`
	ClientHires             int     `json:"clientHires"`
	ClientHireRate          float64 `json:"clientHireRate"`
	ClientMemberSince       string  `json:"clientMemberSince"`
	ClientPaymentVerified   bool    `json:"clientPaymentVerified"`
	ClientPhoneVerified     bool    `json:"clientPhoneVerified"`
	ClientRating            float64 `json:"clientRating"`
	ClientReviews           int     `json:"clientReviews"`

	// PostedDate is resolved from the page's relative "N units ago" text at
	// scrape time. Nil when the page carries no recognizable marker.
	PostedDate *time.Time `json:"postedDate,omitempty"`
}
