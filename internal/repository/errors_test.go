package repository

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]FailureKind{
		http.StatusNotFound:            FailureNotFound,
		http.StatusUnauthorized:        FailureAuth,
		http.StatusForbidden:           FailureRateLimited,
		http.StatusTooManyRequests:     FailureRateLimited,
		http.StatusInternalServerError: FailureServer,
		http.StatusBadGateway:          FailureServer,
	}
	for status, want := range cases {
		if got := classifyStatus(status); got != want {
			t.Fatalf("classifyStatus(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestKindPredicatesUnwrap(t *testing.T) {
	base := &APIError{Kind: FailureRateLimited, StatusCode: 429, Op: "list pull requests", Repo: "acme/api", Err: errors.New("slow down")}
	wrapped := fmt.Errorf("pass failed: %w", base)

	if !IsRateLimited(wrapped) {
		t.Fatal("IsRateLimited must see through wrapping")
	}
	if IsAuthFailure(wrapped) || IsNotFound(wrapped) {
		t.Fatal("predicates must not match other kinds")
	}

	auth := apiError("get repo", "acme/api", http.StatusUnauthorized, errors.New("bad token"))
	if !IsAuthFailure(auth) {
		t.Fatalf("401 should classify as auth failure, got %s", auth.Kind)
	}
}

func TestAPIErrorMessageNamesOperationAndRepo(t *testing.T) {
	err := apiError("list issues", "acme/api", http.StatusNotFound, errors.New("gone"))
	msg := err.Error()
	for _, want := range []string{"list issues", "acme/api", "not_found"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message %q missing %q", msg, want)
		}
	}

	if apiError("ping", "", 0, errors.New("dial tcp")).Kind != FailureNetwork {
		t.Fatal("no HTTP status means a network failure")
	}
}
