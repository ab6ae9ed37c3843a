package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDollars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"empty", "", 0},
		{"plain", "1200", 1200},
		{"dollar sign", "$500.00", 500},
		{"thousands suffix", "$3.5K", 3500},
		{"millions suffix", "$2M", 2000000},
		{"lowercase suffix", "$10k", 10000},
		{"grouped", "$1,200.50", 1200.50},
		{"unparsable", "n/a", 0},
		{"whitespace", "  $40K ", 40000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dollars(tt.raw))
		})
	}
}
