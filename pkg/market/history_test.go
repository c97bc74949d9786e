package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC)

func TestHistoryAppendIsBounded(t *testing.T) {
	h := NewHistoryStore()
	for i := 0; i < HistoryCapacity+22; i++ {
		h.Append("bitcoin", PricePoint{Timestamp: t0.Add(time.Duration(i) * time.Minute), Price: float64(i)}, SourceLive)
		require.LessOrEqual(t, h.Len("bitcoin"), HistoryCapacity)
	}

	points := h.Points("bitcoin")
	require.Len(t, points, HistoryCapacity)
	assert.Equal(t, 22.0, points[0].Price, "oldest points are evicted first")
	assert.Equal(t, float64(HistoryCapacity+21), points[len(points)-1].Price)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestHistoryReplaceKeepsNewest(t *testing.T) {
	h := NewHistoryStore()
	g := NewFallbackGenerator(fixedSource(1))
	series := g.Generate(100, t0)
	require.Len(t, series, FallbackPoints)

	h.Replace("apple", series, SourceFallback)
	points := h.Points("apple")
	require.Len(t, points, HistoryCapacity)
	assert.Equal(t, series[len(series)-1], points[len(points)-1])
	assert.Equal(t, series[1], points[0])
	assert.Equal(t, SourceFallback, h.Source("apple"))
}

func TestHistoryPointsReturnsCopy(t *testing.T) {
	h := NewHistoryStore()
	h.Append("tcs", PricePoint{Timestamp: t0, Price: 10}, SourceLive)
	points := h.Points("tcs")
	points[0].Price = 99
	assert.Equal(t, 10.0, h.Points("tcs")[0].Price)
}

func TestQuoteDerivation(t *testing.T) {
	h := NewHistoryStore()
	h.Append("apple", PricePoint{Timestamp: t0, Price: 100}, SourceLive)
	h.Append("apple", PricePoint{Timestamp: t0.Add(time.Minute), Price: 97}, SourceLive)
	h.Append("apple", PricePoint{Timestamp: t0.Add(2 * time.Minute), Price: 110}, SourceLive)

	q := h.Quote("apple")
	assert.Equal(t, "apple", q.Key)
	assert.Equal(t, 110.0, q.LastPrice)
	assert.Equal(t, 100.0, q.ReferencePrice)
	assert.InDelta(t, 10.0, q.Change, 1e-9)
	assert.InDelta(t, 10.0, q.ChangePercent, 1e-9)
	assert.Equal(t, SourceLive, q.Source)
	assert.Equal(t, 3, q.Points)
	assert.Equal(t, t0.Add(2*time.Minute), q.UpdatedAt)
}

func TestQuoteZeroReferenceHasNoPercent(t *testing.T) {
	h := NewHistoryStore()
	h.Append("ripple", PricePoint{Timestamp: t0, Price: 0}, SourceLive)
	h.Append("ripple", PricePoint{Timestamp: t0.Add(time.Minute), Price: 0.5}, SourceLive)

	q := h.Quote("ripple")
	assert.InDelta(t, 0.5, q.Change, 1e-9)
	assert.Zero(t, q.ChangePercent)
}

func TestQuoteEmptyHistory(t *testing.T) {
	q := NewHistoryStore().Quote("nifty")
	assert.Equal(t, Quote{Key: "nifty"}, q)
}
