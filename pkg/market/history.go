package market

import "sync"

// HistoryCapacity bounds each instrument's history: one trading day at 5m granularity.
const HistoryCapacity = 78

type series struct {
	points []PricePoint
	source Source
}

// HistoryStore keeps a bounded, oldest-first price history per instrument key.
// It is written by the scheduler and read by the display layer.
type HistoryStore struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewHistoryStore returns an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{series: make(map[string]*series)}
}

// Append pushes p onto key's history, evicting the oldest point once at capacity.
func (h *HistoryStore) Append(key string, p PricePoint, src Source) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[key]
	if !ok {
		s = &series{points: make([]PricePoint, 0, HistoryCapacity)}
		h.series[key] = s
	}
	s.points = append(s.points, p)
	if n := len(s.points); n > HistoryCapacity {
		s.points = s.points[n-HistoryCapacity:]
	}
	s.source = src
}

// Replace swaps key's history for points, keeping the newest HistoryCapacity entries.
func (h *HistoryStore) Replace(key string, points []PricePoint, src Source) {
	if n := len(points); n > HistoryCapacity {
		points = points[n-HistoryCapacity:]
	}
	cp := make([]PricePoint, len(points), HistoryCapacity)
	copy(cp, points)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series[key] = &series{points: cp, source: src}
}

// Len returns the number of retained points for key.
func (h *HistoryStore) Len(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.series[key]; ok {
		return len(s.points)
	}
	return 0
}

// Source reports where key's history came from.
func (h *HistoryStore) Source(key string) Source {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.series[key]; ok {
		return s.source
	}
	return SourceNone
}

// Points returns a copy of key's history, oldest first.
func (h *HistoryStore) Points(key string) []PricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.series[key]
	if !ok {
		return nil
	}
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Quote derives the display quote for key. Empty history yields a zero quote.
func (h *HistoryStore) Quote(key string) Quote {
	h.mu.RLock()
	defer h.mu.RUnlock()
	q := Quote{Key: key}
	s, ok := h.series[key]
	if !ok || len(s.points) == 0 {
		return q
	}
	first, last := s.points[0], s.points[len(s.points)-1]
	q.LastPrice = last.Price
	q.ReferencePrice = first.Price
	q.Change = last.Price - first.Price
	if first.Price > 0 {
		q.ChangePercent = q.Change / first.Price * 100
	}
	q.Source = s.source
	q.Points = len(s.points)
	q.UpdatedAt = last.Timestamp
	return q
}
