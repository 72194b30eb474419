package provider

import (
	"errors"
	"fmt"
)

// UpstreamError is a failure of the market-data provider: a transport error,
// a non-2xx status, a provider-reported error code, or an unusable payload.
// It is fatal to snapshot assembly.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s HTTP %d", e.Op, e.StatusCode)
	default:
		return e.Message
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether err wraps an *UpstreamError.
func IsUpstreamError(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
