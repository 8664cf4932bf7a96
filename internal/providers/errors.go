package providers

import (
	"context"
	"errors"
	"strings"
)

type ErrorType string

const (
	ErrorTimeout    ErrorType = "timeout"
	ErrorConnection ErrorType = "connection"
	ErrorRate       ErrorType = "rate"
	ErrorServer     ErrorType = "server"
	ErrorPermanent  ErrorType = "permanent"
)

// ClassifyError buckets a completion failure for retry and fallback
// decisions. Timeout and connection failures are the ModelUnavailable
// class; everything else is treated as non-retryable by callers.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "timeout"), strings.Contains(e, "deadline"):
		return ErrorTimeout
	case strings.Contains(e, "connection refused"), strings.Contains(e, "no such host"), strings.Contains(e, "connection reset"), strings.Contains(e, "eof"):
		return ErrorConnection
	case strings.Contains(e, "rate"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "500"), strings.Contains(e, "502"), strings.Contains(e, "503"), strings.Contains(e, "unavailable"), strings.Contains(e, "overloaded"):
		return ErrorServer
	default:
		return ErrorPermanent
	}
}

// Unavailable reports whether the failure means the inference endpoint
// could not be reached at all, as opposed to rejecting the request.
func Unavailable(err error) bool {
	switch ClassifyError(err) {
	case ErrorTimeout, ErrorConnection, ErrorServer:
		return true
	default:
		return false
	}
}
