package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscout/internal/browser"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/models"
)

// listingPathMarker identifies anchors that point at job detail pages.
const listingPathMarker = "/jobs/"

// minLinkTextLen filters out icon and pagination links that share the
// listing path.
const minLinkTextLen = 10

// Harvester extracts candidate listing links from the currently loaded index
// page.
type Harvester struct {
	targetBase string
	logger     types.Logger
}

// NewHarvester creates a harvester. targetBase resolves relative hrefs to
// absolute URLs.
func NewHarvester(targetBase string) *Harvester {
	return &Harvester{
		targetBase: strings.TrimRight(targetBase, "/"),
		logger:     logging.GetGlobalLogger().WithField("component", "feed"),
	}
}

// Harvest returns up to maxCount candidates from the current document, in
// document order. Any failure to read or parse the page yields an empty list,
// logged but never raised: a bad feed read costs one cycle, not the process.
func (h *Harvester) Harvest(surface browser.Surface, maxCount int) []models.JobCandidate {
	rawHTML, err := surface.HTML()
	if err != nil {
		h.logger.Error("Failed to read feed page", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		h.logger.Error("Failed to parse feed page", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var candidates []models.JobCandidate
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())

		if !strings.Contains(href, listingPathMarker) || len(text) <= minLinkTextLen {
			return true
		}

		candidates = append(candidates, models.JobCandidate{
			Title: text,
			URL:   h.absoluteURL(href),
		})
		return len(candidates) < maxCount
	})

	h.logger.Info("Feed harvested", map[string]interface{}{
		"count": len(candidates),
	})
	return candidates
}

func (h *Harvester) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return h.targetBase + href
}
