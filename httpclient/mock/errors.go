package mock

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueEmpty indicates nothing was registered or queued when a request missed.
	ErrQueueEmpty = errors.New("response queue is empty")

	// ErrRequestMissed indicates responses exist, but none match the request.
	ErrRequestMissed = errors.New("no queued response matches the request")

	// ErrRequestLimit indicates a registered response reached its repeat limit.
	ErrRequestLimit = errors.New("request limit surpassed")

	// ErrTotalRequestLimit indicates the client-wide request limit was reached.
	ErrTotalRequestLimit = errors.New("total request limit surpassed")

	// ErrInvalidFixture wraps failures while loading fixture documents.
	ErrInvalidFixture = errors.New("invalid fixture")

	// ErrInvalidEnvelope wraps failures while decoding a host-call payload.
	ErrInvalidEnvelope = errors.New("invalid request envelope")
)

// DispatchError describes why a request could not be answered. Kind is one of
// ErrQueueEmpty, ErrRequestMissed, ErrRequestLimit or ErrTotalRequestLimit, and
// errors.Is matches against it.
type DispatchError struct {
	// Kind is the sentinel error for the failure.
	Kind error
	// Key is the match key of the failed request.
	Key string
	// Limit is the limit that was reached, for the two limit kinds.
	Limit int
}

func (e *DispatchError) Error() string {
	switch e.Kind {
	case ErrQueueEmpty:
		return fmt.Sprintf("%s: unable to resolve request for %s", e.Kind, e.Key)
	case ErrRequestMissed:
		return fmt.Sprintf("%s: %s", e.Kind, e.Key)
	case ErrRequestLimit:
		return fmt.Sprintf("request limit of %d surpassed for %s", e.Limit, e.Key)
	case ErrTotalRequestLimit:
		return fmt.Sprintf("total request limit of %d surpassed", e.Limit)
	default:
		return fmt.Sprintf("dispatch failed for %s: %v", e.Key, e.Kind)
	}
}

func (e *DispatchError) Unwrap() error { return e.Kind }
