package market

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// FallbackPoints is the length of a generated demo series.
	FallbackPoints = 79
	// FallbackSpacing separates consecutive demo samples.
	FallbackSpacing = 5 * time.Minute
	// DefaultBasePrice seeds instruments missing from the base price table.
	DefaultBasePrice = 100.0

	fallbackSpread = 0.02
)

var basePrices = map[string]float64{
	"nifty":     24000,
	"banknifty": 48000,
	"sensex":    80000,
	"reliance":  2900,
	"tcs":       4000,
	"infy":      1800,
	"hdfcbank":  1650,

	"bitcoin":  65000,
	"ethereum": 3500,
	"solana":   150,
	"ripple":   0.6,
	"cardano":  0.45,
	"dogecoin": 0.12,

	"apple":     190,
	"microsoft": 420,
	"nvidia":    450,
	"tesla":     250,
	"amazon":    180,
	"alphabet":  170,
	"oracle":    120,
}

// BasePrice returns the demo seed price for key.
func BasePrice(key string) float64 {
	if p, ok := basePrices[key]; ok {
		return p
	}
	return DefaultBasePrice
}

// FallbackGenerator produces synthetic price series for instruments whose
// provider is unavailable. Labelling the result as demo data is up to the caller.
type FallbackGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallbackGenerator builds a generator; a nil source seeds from the wall clock.
func NewFallbackGenerator(src rand.Source) *FallbackGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &FallbackGenerator{rnd: rand.New(src)}
}

// Generate returns FallbackPoints samples spaced FallbackSpacing apart, the last
// at now, each within ±1% of basePrice.
func (g *FallbackGenerator) Generate(basePrice float64, now time.Time) []PricePoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	points := make([]PricePoint, 0, FallbackPoints)
	for i := FallbackPoints - 1; i >= 0; i-- {
		variation := (g.rnd.Float64() - 0.5) * basePrice * fallbackSpread
		points = append(points, PricePoint{
			Timestamp: now.Add(-time.Duration(i) * FallbackSpacing),
			Price:     basePrice + variation,
		})
	}
	return points
}

// GenerateFor seeds Generate from the base price table.
func (g *FallbackGenerator) GenerateFor(key string, now time.Time) []PricePoint {
	return g.Generate(BasePrice(key), now)
}
