// Package source defines where activity metadata and point streams come
// from. The engine only sees the two interfaces below; HTTP, FIT files and
// caching are interchangeable implementations.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/routeblend/routeblend/internal/types"
)

// ActivitySource lists activity metadata, paged.
type ActivitySource interface {
	ListActivities(ctx context.Context, page, perPage int) ([]types.Activity, error)
}

// StreamSource fetches the ordered point stream of a single activity.
type StreamSource interface {
	GetStream(ctx context.Context, activityID string) ([]types.RawPoint, error)
}

// TokenProvider exchanges a session for a bearer token. Token storage and
// OAuth refresh live outside this module.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Sentinel errors of the fetch layer. Per-activity failures
// (UpstreamError, ErrMalformedStream) drop that activity from the batch and
// are never fatal to a load; ErrUnauthenticated propagates to the caller.
var (
	ErrUnauthenticated = errors.New("source: unauthenticated")
	ErrMalformedStream = errors.New("source: stream has no latlng data")
	ErrEmptyDataset    = errors.New("source: no usable tracks in dataset")
)

// UpstreamError wraps a per-activity failure of the upstream API.
type UpstreamError struct {
	ActivityID string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.ActivityID == "" {
		return fmt.Sprintf("upstream error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error for activity %s (status %d): %v", e.ActivityID, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StaticToken is a TokenProvider returning a fixed bearer token, typically
// loaded from the environment.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrUnauthenticated
	}
	return string(s), nil
}
