package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/pkg/models"
)

func TestFetchSettings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bots/settings/bot-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"maxJobsPerCycle": 25,
				"searchQuery":     "golang",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	settings, err := client.FetchSettings(context.Background(), "bot-1")

	require.NoError(t, err)
	assert.Equal(t, 25, settings.JobCap())
	assert.Equal(t, "golang", settings.Query())
}

func TestFetchSettingsUnsuccessfulEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchSettings(context.Background(), "bot-1")

	assert.Error(t, err)
}

func TestSendHeartbeat(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bots/heartbeat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	err := client.SendHeartbeat(context.Background(), &models.Heartbeat{
		BotID:     "bot-1",
		Status:    models.StatusIdle,
		Message:   "cycle done",
		JobURL:    "https://www.upwork.com/jobs/~01abc",
		Timestamp: time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "bot-1", received["botId"])
	assert.Equal(t, models.StatusIdle, received["status"])
	assert.Equal(t, "cycle done", received["message"])
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc", received["jobUrl"])
	assert.Contains(t, received, "timestamp")
}

func TestShouldVisit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/shouldVisit", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://www.upwork.com/jobs/~01abc", body["url"])
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"shouldVisit": true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	visit, err := client.ShouldVisit(context.Background(), "https://www.upwork.com/jobs/~01abc")

	require.NoError(t, err)
	assert.True(t, visit)
}

func TestIngestJobWrapsRecordInArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/ingest", r.URL.Path)
		var batch []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		require.Len(t, batch, 1)
		assert.Equal(t, "https://www.upwork.com/jobs/~01abc", batch[0]["url"])
		json.NewEncoder(w).Encode(map[string]interface{}{"inserted": 1})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	inserted, err := client.IngestJob(context.Background(), &models.JobRecord{
		URL:   "https://www.upwork.com/jobs/~01abc",
		Title: "Build API Integration",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestNon2xxIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchSettings(context.Background(), "bot-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
