package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detailFixture mirrors the markup shapes of a real detail page: positional
// markers, data-qa anchors and the literal end-of-description comment.
const detailFixture = `<html>
<head><title>Build API Integration - IT &amp; Networking</title></head>
<body>
<h4 class="m-0">Summary</h4><div class="break mt-2"><span>Integrate a payment
provider with <strong>our</strong> existing backend services.</span><!----></div>
<ul>
<li><strong data-v-123>Expert</strong> experience level</li>
<li>Project Type:</strong> <span data-test="segmentation">One-time project</span></li>
</ul>
<div class="type">Fixed-price</div>
<div data-test="BudgetAmount"><p>$100.00</p></div>
<div data-test="BudgetAmount"><p>$300.00</p></div>
<span>Posted <span>3 days ago</span> by client</span>
<div>12 required connects to submit a proposal</div>
<section class="client">
<div class="air3-rating">Rating is 4.85 out of 5.</div>
<span>25 reviews</span>
<ul>
<li data-qa="client-location"><strong>United States</strong>
<div class="mt-1"><span class="nowrap">Austin</span><span>10:45 AM</span></div></li>
<li data-qa="client-job-posting-stats"><strong>57 jobs posted</strong>
<div>68% hire rate, 3 open jobs</div></li>
<li><strong data-qa="client-hourly-rate">$25.50 /hr avg hourly rate paid</strong>
<div data-qa="client-hires"><div>132 hires, 14 active</div></div></li>
<li data-qa="client-contract-date"><small>Member since Nov 4, 2019</small></li>
</ul>
<div><span>$3.5K</span> total spent</div>
<div>Payment method verified</div>
<div>Phone number verified</div>
</section>
</body>
</html>`

func TestRecordFullFixture(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	record := Record(detailFixture, "https://www.upwork.com/jobs/~01abc?ref=feed", now)

	assert.Equal(t, "Build API Integration", record.Title)
	assert.Equal(t, "IT & Networking", record.MainCategory)
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc", record.URL)
	assert.Equal(t, "Integrate a payment provider with our existing backend services.", record.Description)

	assert.Equal(t, "Expert", record.ExperienceLevel)
	assert.Equal(t, "One-time project", record.ProjectType)
	assert.Equal(t, "Fixed", record.PricingModel)

	assert.Equal(t, 100.0, record.MinRange)
	assert.Equal(t, 300.0, record.MaxRange)
	assert.Equal(t, 12, record.RequiredConnects)

	assert.Equal(t, "United States", record.ClientCountry)
	assert.Equal(t, "Austin", record.ClientCity)
	assert.Equal(t, 3500.0, record.ClientSpend)
	assert.Equal(t, 25.50, record.ClientAverageHourlyRate)
	assert.Equal(t, 57, record.ClientJobsPosted)
	assert.Equal(t, 132, record.ClientHires)
	assert.Equal(t, 68.0, record.ClientHireRate)
	assert.Equal(t, "Nov 4, 2019", record.ClientMemberSince)
	assert.True(t, record.ClientPaymentVerified)
	assert.True(t, record.ClientPhoneVerified)
	assert.Equal(t, 4.85, record.ClientRating)
	assert.Equal(t, 25, record.ClientReviews)

	require.NotNil(t, record.PostedDate)
	assert.Equal(t, now.AddDate(0, 0, -3), *record.PostedDate)
}

func TestRecordAllMarkersAbsent(t *testing.T) {
	now := time.Now()
	record := Record("<html><head></head><body><p>nothing here</p></body></html>",
		"https://www.upwork.com/jobs/~01xyz?page=2", now)

	assert.Equal(t, "", record.Title)
	assert.Equal(t, "", record.MainCategory)
	assert.Equal(t, "https://www.upwork.com/jobs/~01xyz", record.URL)
	assert.Equal(t, "", record.Description)
	assert.Equal(t, "", record.ExperienceLevel)
	assert.Equal(t, "", record.ProjectType)
	assert.Equal(t, "", record.PricingModel)
	assert.Equal(t, 0.0, record.MinRange)
	assert.Equal(t, 0.0, record.MaxRange)
	assert.Equal(t, 0, record.RequiredConnects)
	assert.Equal(t, "", record.ClientCountry)
	assert.Equal(t, "", record.ClientCity)
	assert.Equal(t, 0.0, record.ClientSpend)
	assert.Equal(t, 0.0, record.ClientAverageHourlyRate)
	assert.Equal(t, 0, record.ClientJobsPosted)
	assert.Equal(t, 0, record.ClientHires)
	assert.Equal(t, 0.0, record.ClientHireRate)
	assert.Equal(t, "", record.ClientMemberSince)
	assert.False(t, record.ClientPaymentVerified)
	assert.False(t, record.ClientPhoneVerified)
	assert.Equal(t, 0.0, record.ClientRating)
	assert.Equal(t, 0, record.ClientReviews)
	assert.Nil(t, record.PostedDate)
}

func TestBudgetRangePolicy(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		wantMin float64
		wantMax float64
	}{
		{"no markers", "<div>no budget here</div>", 0, 0},
		{
			"single marker used for both bounds",
			`<div data-test="BudgetAmount"><p>$500.00</p></div>`,
			500, 500,
		},
		{
			"first two markers become min and max",
			`<div data-test="BudgetAmount"><p>$100.00</p></div>` +
				`<div data-test="BudgetAmount"><p>$300.00</p></div>` +
				`<div data-test="BudgetAmount"><p>$900.00</p></div>`,
			100, 300,
		},
		{
			"grouped thousands",
			`<span data-test="BudgetAmount">$1,500</span>`,
			1500, 1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := budgetRange(tt.html)
			assert.Equal(t, tt.wantMin, min)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestPostedDateResolution(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		html string
		want time.Time
	}{
		{"days ago", "<span>3 days ago</span>", now.AddDate(0, 0, -3)},
		{"single unit", "<span>1 hour ago</span>", now.Add(-time.Hour)},
		{"weeks ago", "<span>2 weeks ago</span>", now.AddDate(0, 0, -14)},
		{"months ago", "<span>4 months ago</span>", now.AddDate(0, -4, 0)},
		{"yesterday keeps time of day", "<span>Posted yesterday</span>", now.AddDate(0, 0, -1)},
		{"today", "<span>Posted today</span>", now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postedDate(tt.html, now)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, postedDate("<span>posted recently</span>", now))
}

func TestRatingOutsideProximityWindowIgnored(t *testing.T) {
	// The rating sits more than 4000 characters before the location anchor,
	// so the bounded window must not see it.
	padding := make([]byte, 4500)
	for i := range padding {
		padding[i] = 'x'
	}
	html := `<div>Rating is 4.9 of something</div>` + string(padding) +
		`<li data-qa="client-location"><strong>Canada</strong></li>`

	rating, reviews := ratingAndReviews(html)
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0, reviews)
}

func TestDescriptionMissingAnchors(t *testing.T) {
	assert.Equal(t, "", description("<div>no summary marker</div>"))
	assert.Equal(t, "", description("Summary with no closing bracket or end marker"))
	assert.Equal(t, "", description("<h4>Summary</h4><div>never terminated"))
}
