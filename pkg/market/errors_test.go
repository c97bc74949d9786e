package market

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("kite: %w", ErrNoProviderAvailable), KindNoProvider},
		{fmt.Errorf("x: %w", ErrUpstreamTimeout), KindUpstreamTimeout},
		{context.DeadlineExceeded, KindUpstreamTimeout},
		{fmt.Errorf("dial: %w", timeoutErr{}), KindUpstreamTimeout},
		{fmt.Errorf("x: %w", ErrShapeValidation), KindShapeValidation},
		{ErrUpstreamRejected, KindUpstreamRejected},
		{errors.New("connection refused"), KindUpstreamRejected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}
