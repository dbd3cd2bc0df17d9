// Package netutil classifies errors from Bot API calls for retry decisions.
package netutil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether err is a transient dial or timeout failure.
// It is the transport-level check used below HTTP.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Op == "dial"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
		return ShouldRetry(urlErr.Err)
	}
	return false
}

// ShouldRetryAPI extends ShouldRetry with Bot API answers worth repeating:
// flood control and server-side failures.
func ShouldRetryAPI(err error) bool {
	if _, ok := RetryAfter(err); ok {
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code >= http.StatusInternalServerError {
		return true
	}
	return ShouldRetry(err)
}

// RetryAfter returns the wait requested by a flood control error.
func RetryAfter(err error) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return time.Duration(flood.RetryAfter) * time.Second, true
	}
	var floodPtr *tele.FloodError
	if errors.As(err, &floodPtr) && floodPtr != nil {
		return time.Duration(floodPtr.RetryAfter) * time.Second, true
	}
	return 0, false
}
