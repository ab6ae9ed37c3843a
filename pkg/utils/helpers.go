package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateEventID generates a unique id attached to heartbeat events for
// tracing on the collector side.
func GenerateEventID() string {
	return uuid.New().String()
}

// CanonicalURL strips the query string (and fragment) from a listing URL.
// The canonical form is the dedup/identity key: it must be applied both
// before the duplicate check and before ingest, or duplicates slip through.
func CanonicalURL(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// RandomDuration returns a uniformly random duration in [min, max].
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// FormatDuration formats a duration to a human-readable string for log fields.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
