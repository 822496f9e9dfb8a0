package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog and rating errors
	ErrNotAuthorized    = fmt.Errorf("not authorized")
	ErrNoSubscription   = fmt.Errorf("no active subscription")
	ErrNetworkTransient = fmt.Errorf("transient network failure")
	ErrNotFound         = fmt.Errorf("not found")
	ErrPlayerNotRunning = fmt.Errorf("player not running")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Operational errors
	ErrTimeout = fmt.Errorf("operation timed out")
)

// ErrorKind classifies failures from the catalog, rating, and automation
// collaborators into the buckets the engine cares about.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotAuthorized
	KindNoSubscription
	KindNetworkTransient
	KindNotFound
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotAuthorized:
		return "not_authorized"
	case KindNoSubscription:
		return "no_subscription"
	case KindNetworkTransient:
		return "network_transient"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Classify maps an error to its [ErrorKind].
//
// Wrapped sentinel errors take precedence; otherwise transport-level errors
// (timeouts, refused connections, DNS failures) classify as transient.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrNoSubscription):
		return KindNoSubscription
	case errors.Is(err, ErrNetworkTransient):
		return KindNetworkTransient
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindNetworkTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetworkTransient
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection reset") {
		return KindNetworkTransient
	}

	return KindUnknown
}

// IsRetryable reports whether an error should be retried.
//
// Only transient network failures are retryable; authorization, subscription,
// and not-found failures fail fast.
func IsRetryable(err error) bool {
	return Classify(err) == KindNetworkTransient
}

// ClassifyHTTPStatus converts an HTTP status code into the matching sentinel
// error, or nil for success codes.
func ClassifyHTTPStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrNotAuthorized
	case status == http.StatusForbidden:
		return ErrNoSubscription
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		return ErrNetworkTransient
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}

// Suggestion returns a user-facing recovery hint for the given error.
func Suggestion(err error) string {
	switch Classify(err) {
	case KindNotAuthorized:
		return "Run 'favtrack auth login' to re-authorize with the catalog"
	case KindNoSubscription:
		return "Check that your catalog subscription is active"
	case KindNetworkTransient:
		return "Check your internet connection and try again"
	case KindNotFound:
		return "The song was not found in the catalog"
	default:
		return ""
	}
}

// ErrorSink receives classified failure reports from background work.
//
// Implementations only record aggregate counts and kinds, never track names
// or other playback content.
type ErrorSink interface {
	Record(kind ErrorKind)
}

// CountingSink is an in-memory [ErrorSink] keeping per-kind counts.
type CountingSink struct {
	mu     sync.Mutex
	counts map[ErrorKind]int
}

// NewCountingSink creates an empty CountingSink.
func NewCountingSink() *CountingSink {
	return &CountingSink{counts: make(map[ErrorKind]int)}
}

// Record increments the count for the given kind.
func (s *CountingSink) Record(kind ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[kind]++
}

// Count returns the number of recorded failures of the given kind.
func (s *CountingSink) Count(kind ErrorKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// Counts returns a copy of all recorded counts keyed by kind name.
func (s *CountingSink) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k.String()] = v
	}
	return out
}
