package market

import "context"

// Persistence hooks allow the scheduler to mirror derived quotes to external stores.
type Persistence interface {
	// RecordQuote persists the latest quote of one instrument.
	RecordQuote(ctx context.Context, m Market, q Quote) error
}
