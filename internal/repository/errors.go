package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies platform API failures so callers can decide
// between skip, retry, and abort without string matching.
type FailureKind string

const (
	FailureNotFound    FailureKind = "not_found"
	FailureRateLimited FailureKind = "rate_limited"
	FailureAuth        FailureKind = "auth"
	FailureServer      FailureKind = "server"
	FailureNetwork     FailureKind = "network"
)

// APIError is the typed failure returned by every Provider call.
type APIError struct {
	Kind       FailureKind
	StatusCode int
	Op         string // e.g. "list pull requests"
	Repo       string // owner/name when known
	Err        error
}

func (e *APIError) Error() string {
	if e.Repo != "" {
		return fmt.Sprintf("%s %s: %s (%v)", e.Op, e.Repo, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Op, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool { return hasKind(err, FailureRateLimited) }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return hasKind(err, FailureNotFound) }

// IsAuthFailure reports whether err is an authentication failure. Auth
// failures are fatal to the process: credentials must be fixed.
func IsAuthFailure(err error) bool { return hasKind(err, FailureAuth) }

func hasKind(err error, kind FailureKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// classifyStatus maps an HTTP status code to a FailureKind.
func classifyStatus(status int) FailureKind {
	switch {
	case status == http.StatusNotFound:
		return FailureNotFound
	case status == http.StatusUnauthorized:
		return FailureAuth
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		// GitHub signals primary rate limiting with 403.
		return FailureRateLimited
	case status >= 500:
		return FailureServer
	default:
		return FailureServer
	}
}

func apiError(op, repo string, status int, err error) *APIError {
	kind := FailureNetwork
	if status > 0 {
		kind = classifyStatus(status)
	}
	return &APIError{Kind: kind, StatusCode: status, Op: op, Repo: repo, Err: err}
}
