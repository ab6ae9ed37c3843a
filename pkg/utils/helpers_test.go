package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc",
		CanonicalURL("https://www.upwork.com/jobs/~01abc?ref=xyz&page=2"))
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc",
		CanonicalURL("https://www.upwork.com/jobs/~01abc#section"))
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc",
		CanonicalURL("https://www.upwork.com/jobs/~01abc"))
}

func TestCanonicalURLIdempotent(t *testing.T) {
	once := CanonicalURL("https://www.upwork.com/jobs/~01abc?ref=xyz")
	assert.Equal(t, once, CanonicalURL(once))
}

func TestRandomDurationBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 50*time.Millisecond
	for i := 0; i < 100; i++ {
		d := RandomDuration(min, max)
		assert.GreaterOrEqual(t, d, min)
		assert.LessOrEqual(t, d, max)
	}
}

func TestRandomDurationDegenerateWindow(t *testing.T) {
	assert.Equal(t, time.Second, RandomDuration(time.Second, time.Second))
	assert.Equal(t, time.Second, RandomDuration(time.Second, time.Millisecond))
}
