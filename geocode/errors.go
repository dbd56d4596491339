// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrQuotaExceeded is returned once the daily call budget is spent.
var ErrQuotaExceeded = errors.New("daily geocoding call limit reached")

// Kind classifies provider failures.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindRateLimit means the provider asked us to slow down.
	KindRateLimit
	// KindQuotaExceeded means no more calls are allowed.
	KindQuotaExceeded
	// KindTimeout means the call did not finish in time.
	KindTimeout
	// KindNotFound means the provider knows nothing about the query.
	KindNotFound
	// KindInvalidRequest means the request was rejected as malformed.
	KindInvalidRequest
	// KindNetwork covers transport failures and unavailable upstreams.
	KindNetwork
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindRateLimit:      "rate_limit",
	KindQuotaExceeded:  "quota_exceeded",
	KindTimeout:        "timeout",
	KindNotFound:       "not_found",
	KindInvalidRequest: "invalid_request",
	KindNetwork:        "network",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified provider failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (Kind, bool) {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Kind, true
	}

	return KindUnknown, false
}

// IsRateLimit reports whether err is a provider rate limit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	if k, ok := kindOf(err); ok {
		return k == KindRateLimit
	}

	s := strings.ToLower(err.Error())

	return strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests") ||
		strings.Contains(s, "429")
}

// IsQuotaExceeded reports whether err means the call budget is spent.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}

	if k, ok := kindOf(err); ok {
		return k == KindQuotaExceeded
	}

	s := strings.ToLower(err.Error())

	return strings.Contains(s, "over_query_limit") ||
		strings.Contains(s, "quota exceeded")
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if k, ok := kindOf(err); ok && k == KindTimeout {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	s := strings.ToLower(err.Error())

	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "deadline exceeded")
}

// IsTransient reports whether retrying later may succeed.
func IsTransient(err error) bool {
	if err == nil || IsQuotaExceeded(err) {
		return false
	}

	if IsRateLimit(err) || IsTimeout(err) {
		return true
	}

	k, _ := kindOf(err)

	return k == KindNetwork
}

// ClassifyHTTPStatus maps a non-200 HTTP status to an Error.
func ClassifyHTTPStatus(statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Message: "rate limit reached"}
	case http.StatusForbidden:
		return &Error{Kind: KindQuotaExceeded, Message: "quota exceeded or access denied"}
	case http.StatusBadRequest:
		return &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: "location not found"}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("service unavailable (status %d)", statusCode)}
	default:
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("HTTP error %d", statusCode)}
	}
}

// ClassifyStatus maps a provider status string other than OK and
// ZERO_RESULTS to an Error.
func ClassifyStatus(status, message string) *Error {
	msg := "geocoding status " + status
	if message != "" {
		msg += ": " + message
	}

	switch status {
	case "OVER_QUERY_LIMIT":
		return &Error{Kind: KindRateLimit, Message: msg}
	case "OVER_DAILY_LIMIT":
		return &Error{Kind: KindQuotaExceeded, Message: msg}
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return &Error{Kind: KindInvalidRequest, Message: msg}
	case "ZERO_RESULTS":
		return &Error{Kind: KindNotFound, Message: msg}
	case "UNKNOWN_ERROR":
		return &Error{Kind: KindNetwork, Message: msg}
	default:
		return &Error{Kind: KindUnknown, Message: msg}
	}
}

// classifyTransport wraps an error returned by the HTTP client.
func classifyTransport(err error) *Error {
	if IsTimeout(err) {
		return &Error{Kind: KindTimeout, Message: "geocoding request timed out", Err: err}
	}

	return &Error{Kind: KindNetwork, Message: "geocoding request failed", Err: err}
}
