package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
	"jobscout/pkg/models"
)

// Client talks to the remote collector: settings store, heartbeat sink,
// duplicate-check endpoint and job ingestion. All methods return plain errors;
// the degradation policy (stale cache, skip, drop) lives with the callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     types.Logger
}

// NewClient creates a collector client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.GetGlobalLogger().WithField("component", "collector"),
	}
}

// FetchSettings retrieves the remote settings bag for the bot.
func (c *Client) FetchSettings(ctx context.Context, botID string) (*models.BotSettings, error) {
	var envelope models.SettingsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/bots/settings/"+botID, nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("settings response not successful")
	}
	return &envelope.Data, nil
}

// SendHeartbeat posts a liveness/progress event. The response body carries no
// contract beyond the status code.
func (c *Client) SendHeartbeat(ctx context.Context, hb *models.Heartbeat) error {
	return c.doJSON(ctx, http.MethodPost, "/bots/heartbeat", hb, nil)
}

// ShouldVisit asks whether the canonical URL is still worth scraping.
func (c *Client) ShouldVisit(ctx context.Context, canonicalURL string) (bool, error) {
	body := map[string]string{"url": canonicalURL}
	var envelope models.ShouldVisitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/shouldVisit", body, &envelope); err != nil {
		return false, err
	}
	return envelope.Data.ShouldVisit, nil
}

// IngestJob relays one extracted record. The wire format is an array with a
// single element; the collector batches on its side.
func (c *Client) IngestJob(ctx context.Context, record *models.JobRecord) (int, error) {
	var envelope models.IngestResponse
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/ingest", []*models.JobRecord{record}, &envelope); err != nil {
		return 0, err
	}
	return envelope.Inserted, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("collector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log line, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.logger.Warn("Collector returned non-2xx", map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
			"body":   string(snippet),
		})
		return fmt.Errorf("collector returned status %d for %s", resp.StatusCode, path)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode collector response: %w", err)
	}
	return nil
}
