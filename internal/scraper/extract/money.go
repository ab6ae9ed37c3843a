package extract

import (
	"strconv"
	"strings"
)

// Dollars turns a free-text magnitude string ("$3.5K", "$2M", "1,200.50")
// into a plain number. Empty or unparsable input yields 0. Values that are
// already numeric never pass through here; extractors keep parsed floats as
// floats, so normalization is idempotent by construction.
func Dollars(raw string) float64 {
	if raw == "" {
		return 0
	}

	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer("$", "", ",", "").Replace(cleaned)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "K"):
		multiplier = 1_000
		cleaned = strings.TrimSuffix(cleaned, "K")
	case strings.HasSuffix(cleaned, "M"):
		multiplier = 1_000_000
		cleaned = strings.TrimSuffix(cleaned, "M")
	}

	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return num * multiplier
}
