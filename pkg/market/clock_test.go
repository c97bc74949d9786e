package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ist(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, IST)
}

func TestIndianMarketWindow(t *testing.T) {
	// 2024-06-10 is a Monday.
	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"before open", ist(2024, 6, 10, 8, 59), false},
		{"at open", ist(2024, 6, 10, 9, 0), true},
		{"midday", ist(2024, 6, 10, 12, 30), true},
		{"last minute", ist(2024, 6, 10, 15, 29), true},
		{"at close", ist(2024, 6, 10, 15, 30), false},
		{"saturday", ist(2024, 6, 15, 11, 0), false},
		{"sunday", ist(2024, 6, 16, 11, 0), false},
		{"utc input", time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, IsIndianMarketOpen(tt.at))
			assert.Equal(t, tt.open, IsOpen(IndianStocks, tt.at))
		})
	}
}

func TestUSMarketWindow(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"monday evening", ist(2024, 6, 10, 19, 0), true},
		{"monday before open", ist(2024, 6, 10, 18, 59), false},
		{"tuesday early after monday", ist(2024, 6, 11, 1, 29), true},
		{"tuesday at close", ist(2024, 6, 11, 1, 30), false},
		{"friday evening", ist(2024, 6, 14, 21, 0), true},
		{"saturday early after friday", ist(2024, 6, 15, 0, 30), false},
		{"saturday evening", ist(2024, 6, 15, 20, 0), false},
		{"monday early after sunday", ist(2024, 6, 10, 0, 30), false},
		{"friday early after thursday", ist(2024, 6, 14, 1, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, IsUSMarketOpen(tt.at))
		})
	}
}

func TestCryptoAlwaysOpen(t *testing.T) {
	for _, at := range []time.Time{ist(2024, 6, 15, 3, 0), ist(2024, 6, 16, 23, 59)} {
		assert.True(t, IsCryptoMarketOpen(at))
		assert.Equal(t, "Market Open (24x7)", StatusString(Crypto, at))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Market Open", StatusString(IndianStocks, ist(2024, 6, 10, 10, 0)))
	assert.Equal(t, "Market Closed", StatusString(IndianStocks, ist(2024, 6, 10, 16, 0)))
	assert.Equal(t, "Market Closed", StatusString(Market("forex"), ist(2024, 6, 10, 10, 0)))
}
