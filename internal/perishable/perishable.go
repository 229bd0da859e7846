// Package perishable wraps a value with an expiry instant so downstream
// readers can tell a live reading from one whose source has gone quiet.
// The payload is set once at construction; only the expiry changes after
// that, and it does so atomically, so the scrape path never blocks on the
// ingest path and never observes a torn timestamp.
package perishable

import (
	"sync/atomic"
	"time"
)

// Value pairs a payload with an atomic expiry timestamp (unix nanoseconds).
// A Value starts out expired; each Freshen pushes the expiry forward from
// the current time.
type Value[T any] struct {
	payload T
	expiry  atomic.Int64
}

// New wraps payload with an already-passed expiry, so Fresh reports stale
// until the first Freshen.
func New[T any](payload T) *Value[T] {
	v := &Value[T]{payload: payload}
	v.expiry.Store(clock.Now().UnixNano())
	return v
}

// Freshen sets the expiry to now + validFor and returns the payload for
// immediate use. Safe to call concurrently with Fresh.
func (v *Value[T]) Freshen(validFor time.Duration) *T {
	v.expiry.Store(clock.Now().Add(validFor).UnixNano())
	return &v.payload
}

// Fresh returns the payload while the current time is before the expiry;
// past it, ok is false and the value is to be treated as absent.
func (v *Value[T]) Fresh() (*T, bool) {
	if clock.Now().UnixNano() < v.expiry.Load() {
		return &v.payload, true
	}
	return nil, false
}

// Peek returns the payload regardless of freshness. Callers that must honor
// the validity window use Fresh or Map instead; Peek exists for metadata
// paths (e.g. describing a metric that is currently stale).
func (v *Value[T]) Peek() *T {
	return &v.payload
}

// Map applies f to the payload only while it is fresh.
func Map[T, U any](v *Value[T], f func(*T) U) (U, bool) {
	payload, ok := v.Fresh()
	if !ok {
		var zero U
		return zero, false
	}
	return f(payload), true
}
