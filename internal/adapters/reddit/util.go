package reddit

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "shamewizard/internal/platform/errors"
)

// StatusError wraps non-retryable non-2xx responses from Reddit
type StatusError struct {
	Status int
	Body   string
	Err    error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

func statusErr(status int, body []byte) error {
	tail := strings.TrimSpace(string(body))
	switch status {
	case http.StatusForbidden:
		return perr.Rejectedf("reddit forbidden: %s", tail)
	case http.StatusNotFound:
		return perr.NotFoundf("reddit not found: %s", tail)
	case http.StatusBadRequest:
		return perr.InvalidArgf("reddit bad request: %s", tail)
	default:
		return perr.Internalf("reddit unexpected status %d body %s", status, tail)
	}
}

// rateState is what Reddit reports in X-Ratelimit-* headers
type rateState struct {
	known      bool
	remaining  float64
	used       int
	reset      time.Duration
	retryAfter time.Duration
}

// parseRateHeaders reads Reddit's headers. Remaining is fractional and
// reset is seconds until the window ends, not an epoch
func parseRateHeaders(h http.Header) rateState {
	var s rateState
	if v := h.Get("X-Ratelimit-Remaining"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.known = true
			s.remaining = f
		}
	}
	s.used = atoi(h.Get("X-Ratelimit-Used"))
	s.reset = secs(h.Get("X-Ratelimit-Reset"))
	s.retryAfter = secs(h.Get("Retry-After"))
	return s
}

// waitFor decides how long to wait after a 429
func (s rateState) waitFor() time.Duration {
	if s.retryAfter > 0 {
		return s.retryAfter
	}
	return s.reset
}

func secs(v string) time.Duration {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// IsRateLimited reports whether err is a Reddit rate limit failure
func IsRateLimited(err error) bool {
	return perr.IsCode(err, perr.ErrorCodeTooManyRequests)
}

// Status returns the HTTP status carried by err, or 0
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
