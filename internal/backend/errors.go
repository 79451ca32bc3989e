package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/sakhi/internal/common"
)

// APIError is a non-2xx reply.
type APIError struct {
	Path       string
	Body       string
	StatusCode int
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error on %s (status %d): %s", e.Path, e.StatusCode, e.Body)
}

// RetryDelay implements common.DelayHinter.
func (e *APIError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// Unwrap maps well-known statuses onto the shared sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case e.StatusCode >= 500:
		return common.ErrBackendUnavailable
	default:
		return nil
	}
}

// RejectedError is a 2xx reply carrying success:false.
type RejectedError struct {
	Path    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Path, e.Message)
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
