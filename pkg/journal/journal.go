// Package journal writes one JSON file per monitored refresh pass.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"findash/pkg/market"
	"findash/pkg/session"
)

// OutcomeRecord is the journal form of one instrument's outcome.
type OutcomeRecord struct {
	Key       string `json:"key"`
	Action    string `json:"action"`
	Provider  string `json:"provider,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PassRecord captures a refresh pass together with the quotes it left behind.
type PassRecord struct {
	Timestamp    time.Time       `json:"timestamp"`
	Sequence     int             `json:"sequence"`
	Market       market.Market   `json:"market"`
	MarketStatus string          `json:"market_status"`
	Status       session.Status  `json:"status"`
	Calls        int             `json:"calls"`
	Cancelled    bool            `json:"cancelled"`
	DurationMs   int64           `json:"duration_ms"`
	Outcomes     []OutcomeRecord `json:"outcomes"`
	Quotes       []market.Quote  `json:"quotes"`
}

// NewPassRecord builds a record from a pass result and the view rendered after it.
func NewPassRecord(res session.PassResult, view session.View) *PassRecord {
	rec := &PassRecord{
		Timestamp:    res.FinishedAt,
		Market:       res.Market,
		MarketStatus: view.MarketStatus,
		Status:       view.Status,
		Calls:        res.Calls,
		Cancelled:    res.Cancelled,
	}
	if !res.StartedAt.IsZero() && !res.FinishedAt.IsZero() {
		rec.DurationMs = res.FinishedAt.Sub(res.StartedAt).Milliseconds()
	}
	for _, o := range res.Outcomes {
		out := OutcomeRecord{Key: o.Key, Action: string(o.Action), Provider: o.Provider, ErrorKind: string(o.ErrorKind)}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		rec.Outcomes = append(rec.Outcomes, out)
	}
	for _, iv := range view.Selected {
		rec.Quotes = append(rec.Quotes, iv.Quote)
	}
	return rec
}

// Writer persists pass records to a directory as JSON files.
type Writer struct {
	dir   string
	nowFn func() time.Time

	mu  sync.Mutex
	seq int
}

// NewWriter constructs a journal writer, creating dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WritePass writes rec to a timestamped JSON file and returns its path.
func (w *Writer) WritePass(rec *PassRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	w.seq++
	rec.Sequence = w.seq
	w.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	name := fmt.Sprintf("pass_%s_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), rec.Market, rec.Sequence)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
