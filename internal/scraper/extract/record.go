package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// The page is semi-structured at best: fields are located by literal markers
// and narrow regexes, each scoped to its own region. Every extractor is
// independent and defaults on no-match, so one missing field never blocks the
// rest. There are deliberately no fallback heuristics beyond what is written
// here; the markup shifts too often for clever guessing to stay correct.

var (
	titleRe      = regexp.MustCompile(`(?i)<title>(.*?)</title>`)
	projectRe    = regexp.MustCompile(`(?i)Project Type:</strong>\s*<span[^>]*>(.*?)</span>`)
	experienceRe = regexp.MustCompile(`(?i)<strong[^>]*>\s*(Entry|Intermediate|Expert)\s*</strong>`)

	postedAgoRe = regexp.MustCompile(`(?i)(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago`)
	yesterdayRe = regexp.MustCompile(`(?i)Posted\s+yesterday`)
	todayRe     = regexp.MustCompile(`(?i)Posted\s+today`)

	connectsBeforeRe   = regexp.MustCompile(`(?i)>([^<]*?)\s*required\s+connects`)
	connectsProposalRe = regexp.MustCompile(`(?i)Send a proposal for:\s*<[^>]*>([^<]*)</strong>`)
	digitsRe           = regexp.MustCompile(`\d+`)

	countryRe    = regexp.MustCompile(`(?i)<li[^>]*data-qa="client-location"[^>]*>\s*<strong[^>]*>(.*?)</strong>`)
	cityRe       = regexp.MustCompile(`(?is)<li[^>]*data-qa="client-location"[^>]*>.*?<div[^>]*>\s*<span[^>]*>([^<]*)</span>`)
	spendRe      = regexp.MustCompile(`(?i)>([^<>]+)<[^<]*total spent`)
	hiresBlockRe = regexp.MustCompile(`(?is)<div[^>]*data-qa="client-hires"[^>]*>(.*?)</div>`)
	hiresRe      = regexp.MustCompile(`(?i)([\d,]+)\s+hires?`)
	hireRateRe   = regexp.MustCompile(`(?i)>([\d,.]+)%\s*hire rate`)
	memberRe     = regexp.MustCompile(`(?i)Member since\s*([^<]+)`)
	paymentRe    = regexp.MustCompile(`(?i)payment method verified`)
	phoneRe      = regexp.MustCompile(`(?i)phone number verified`)
	ratingRe     = regexp.MustCompile(`(?i)Rating\s+is\s+(\d+(\.\d+)?)`)
	reviewsRe    = regexp.MustCompile(`(?i)([\d,]+)\s+reviews?`)
	jobsPostedRe = regexp.MustCompile(`(?i)([\d,]+)\s+jobs\s+posted`)
	hourlyRateRe = regexp.MustCompile(`(?i)<strong[^>]*data-qa="client-hourly-rate"[^>]*>\s*\$([\d,.]+)`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

const (
	descriptionMarker    = "Summary"
	descriptionEndMarker = "<!----></div>"
	locationAnchor       = `data-qa="client-location"`

	// Rating and review counts sit shortly before the client-location block;
	// searching only this window avoids false positives elsewhere in the page
	// and a full-document backtrack.
	proximityWindow = 4000
)

// Record parses a raw detail-page document into a JobRecord. It never fails:
// absent markers leave their fields at the zero value. now anchors the
// relative posted-date arithmetic.
func Record(rawHTML, originalURL string, now time.Time) models.JobRecord {
	title, category := titleAndCategory(rawHTML)

	minRange, maxRange := budgetRange(rawHTML)

	record := models.JobRecord{
		Title:        title,
		URL:          utils.CanonicalURL(originalURL),
		Description:  description(rawHTML),
		MainCategory: category,

		ExperienceLevel: firstGroup(experienceRe, rawHTML),
		ProjectType:     firstGroup(projectRe, rawHTML),
		PricingModel:    pricingModel(rawHTML),

		MinRange:         minRange,
		MaxRange:         maxRange,
		RequiredConnects: requiredConnects(rawHTML),

		ClientCountry:           firstGroup(countryRe, rawHTML),
		ClientCity:              firstGroup(cityRe, rawHTML),
		ClientSpend:             Dollars(whitespaceRe.ReplaceAllString(firstGroup(spendRe, rawHTML), "")),
		ClientAverageHourlyRate: parseGroupedFloat(firstGroup(hourlyRateRe, rawHTML)),
		ClientJobsPosted:        parseGroupedInt(firstGroup(jobsPostedRe, rawHTML)),
		ClientHires:             clientHires(rawHTML),
		ClientHireRate:          parseGroupedFloat(firstGroup(hireRateRe, rawHTML)),
		ClientMemberSince:       firstGroup(memberRe, rawHTML),
		ClientPaymentVerified:   paymentRe.MatchString(rawHTML),
		ClientPhoneVerified:     phoneRe.MatchString(rawHTML),
	}

	record.ClientRating, record.ClientReviews = ratingAndReviews(rawHTML)
	record.PostedDate = postedDate(rawHTML, now)
	return record
}

// titleAndCategory splits the document title on its first " - ": the left
// segment is the job title, the right one the main category.
func titleAndCategory(rawHTML string) (string, string) {
	m := titleRe.FindStringSubmatch(rawHTML)
	if m == nil {
		return "", ""
	}

	parts := strings.SplitN(m[1], " - ", 2)
	title := strings.TrimSpace(parts[0])
	category := ""
	if len(parts) == 2 {
		category = html.UnescapeString(strings.TrimSpace(parts[1]))
	}
	return title, category
}

// description locates the block after the "Summary" marker, bounded by the
// literal end-of-block marker, and returns its text with tags stripped and
// whitespace collapsed. Any missing anchor yields the empty string.
func description(rawHTML string) string {
	summaryIdx := strings.Index(rawHTML, descriptionMarker)
	if summaryIdx == -1 {
		return ""
	}

	gtIdx := strings.Index(rawHTML[summaryIdx:], ">")
	if gtIdx == -1 {
		return ""
	}
	gtIdx += summaryIdx

	endIdx := strings.Index(rawHTML[gtIdx:], descriptionEndMarker)
	if endIdx == -1 {
		return ""
	}
	endIdx += gtIdx

	block := strings.TrimSpace(rawHTML[gtIdx+1 : endIdx])
	return collapseSpaces(tagRe.ReplaceAllString(block, " "))
}

func pricingModel(rawHTML string) string {
	if strings.Contains(rawHTML, "Fixed-price</div>") {
		return "Fixed"
	}
	if strings.Contains(rawHTML, "Hourly</div>") {
		return "Hourly"
	}
	return ""
}

// postedDate resolves "N units ago", "Posted yesterday" or "Posted today"
// against now. Nil when the page carries none of the three forms.
func postedDate(rawHTML string, now time.Time) *time.Time {
	if m := postedAgoRe.FindStringSubmatch(rawHTML); m != nil {
		value, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		resolved := subtractUnits(now, value, strings.ToLower(m[2]))
		return &resolved
	}

	if yesterdayRe.MatchString(rawHTML) {
		resolved := now.AddDate(0, 0, -1)
		return &resolved
	}

	if todayRe.MatchString(rawHTML) {
		resolved := now
		return &resolved
	}

	return nil
}

// subtractUnits matches units by prefix so "month" and "months" both resolve.
func subtractUnits(now time.Time, value int, unit string) time.Time {
	switch {
	case strings.HasPrefix(unit, "second"):
		return now.Add(-time.Duration(value) * time.Second)
	case strings.HasPrefix(unit, "minute"):
		return now.Add(-time.Duration(value) * time.Minute)
	case strings.HasPrefix(unit, "hour"):
		return now.Add(-time.Duration(value) * time.Hour)
	case strings.HasPrefix(unit, "day"):
		return now.AddDate(0, 0, -value)
	case strings.HasPrefix(unit, "week"):
		return now.AddDate(0, 0, -value*7)
	case strings.HasPrefix(unit, "month"):
		return now.AddDate(0, -value, 0)
	case strings.HasPrefix(unit, "year"):
		return now.AddDate(-value, 0, 0)
	}
	return now
}

// requiredConnects tries the inline "required connects" form first, then the
// "Send a proposal for:" form. Zero when neither matches.
func requiredConnects(rawHTML string) int {
	if m := connectsBeforeRe.FindStringSubmatch(rawHTML); m != nil {
		squeezed := whitespaceRe.ReplaceAllString(m[1], "")
		if num := digitsRe.FindString(squeezed); num != "" {
			n, _ := strconv.Atoi(num)
			return n
		}
	}

	if m := connectsProposalRe.FindStringSubmatch(rawHTML); m != nil {
		cleaned := strings.NewReplacer("Connects", "", "connects", "", "Connect", "", "connect", "").Replace(m[1])
		cleaned = whitespaceRe.ReplaceAllString(cleaned, "")
		if num := digitsRe.FindString(cleaned); num != "" {
			n, _ := strconv.Atoi(num)
			return n
		}
	}

	return 0
}

func clientHires(rawHTML string) int {
	m := hiresBlockRe.FindStringSubmatch(rawHTML)
	if m == nil {
		return 0
	}
	text := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
	if hm := hiresRe.FindStringSubmatch(text); hm != nil {
		return parseGroupedInt(hm[1])
	}
	return 0
}

// ratingAndReviews searches only the fixed-size window preceding the
// client-location anchor.
func ratingAndReviews(rawHTML string) (float64, int) {
	idx := strings.Index(rawHTML, locationAnchor)
	if idx == -1 {
		return 0, 0
	}

	start := idx - proximityWindow
	if start < 0 {
		start = 0
	}
	snippet := rawHTML[start:idx]

	var rating float64
	if m := ratingRe.FindStringSubmatch(snippet); m != nil {
		rating, _ = strconv.ParseFloat(m[1], 64)
	}

	var reviews int
	if m := reviewsRe.FindStringSubmatch(snippet); m != nil {
		reviews = parseGroupedInt(m[1])
	}

	return rating, reviews
}

// budgetRange scans every BudgetAmount occurrence in document order, reading
// the dollar figure that follows each. Zero matches yield {0,0}, one match is
// used as both bounds, two or more use the first two as min and max. The
// source markup lists them ascending; that ordering is assumed, not verified.
func budgetRange(rawHTML string) (float64, float64) {
	const marker = "BudgetAmount"

	var amounts []float64
	idx := 0
	for {
		found := strings.Index(rawHTML[idx:], marker)
		if found == -1 {
			break
		}
		idx += found

		i := idx
		for i < len(rawHTML) && rawHTML[i] != '$' {
			i++
		}
		if i >= len(rawHTML) {
			break
		}
		i++

		j := i
		for j < len(rawHTML) && rawHTML[j] != '<' {
			j++
		}

		value := strings.ReplaceAll(strings.TrimSpace(rawHTML[i:j]), ",", "")
		if amount, err := strconv.ParseFloat(value, 64); err == nil {
			amounts = append(amounts, amount)
		}

		idx += len(marker)
	}

	switch len(amounts) {
	case 0:
		return 0, 0
	case 1:
		return amounts[0], amounts[0]
	default:
		return amounts[0], amounts[1]
	}
}

func firstGroup(re *regexp.Regexp, rawHTML string) string {
	if m := re.FindStringSubmatch(rawHTML); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func parseGroupedInt(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}

func parseGroupedFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return f
}
