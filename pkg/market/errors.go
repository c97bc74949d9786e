package market

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrNoProviderAvailable means policy forbids fetching the instrument, e.g. Indian stocks without a Kite session.
	ErrNoProviderAvailable = errors.New("market: no provider available")
	// ErrUpstreamRejected covers non-success statuses and undecodable payloads.
	ErrUpstreamRejected = errors.New("market: upstream rejected request")
	// ErrUpstreamTimeout means the provider call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("market: upstream timeout")
	// ErrShapeValidation means the payload decoded but had no numeric price.
	ErrShapeValidation = errors.New("market: payload missing numeric price")
)

// ErrorKind is the coarse classification used for logging and metrics.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindNoProvider       ErrorKind = "no_provider"
	KindUpstreamRejected ErrorKind = "upstream_rejected"
	KindUpstreamTimeout  ErrorKind = "upstream_timeout"
	KindShapeValidation  ErrorKind = "shape_validation"
)

// Classify maps err onto the error taxonomy. Unknown transport errors count as rejections.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoProviderAvailable):
		return KindNoProvider
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindUpstreamTimeout
	case errors.Is(err, ErrShapeValidation):
		return KindShapeValidation
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindUpstreamTimeout
	}
	return KindUpstreamRejected
}
