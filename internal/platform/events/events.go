// Package events defines the domain events emitted after a unit of work
// commits. Publishing is best effort: a failed publish never undoes a commit.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Type names a domain event.
type Type string

const (
	PolicyBound               Type = "policy.bound"
	PolicyUpdated             Type = "policy.updated"
	PremiumRecalculated       Type = "premium.recalculated"
	CustomerEnrolled          Type = "customer.enrolled"
	VerificationStatusChanged Type = "verification.status_changed"
	KycDocumentsSubmitted     Type = "kyc.documents_submitted"
	ClaimFiled                Type = "claim.filed"
)

// Event is one fact about a committed change. Key groups events for the same
// aggregate onto one partition.
type Event struct {
	Type       Type           `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit publishes event and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to publish domain event",
			"event_type", string(event.Type),
			"key", event.Key,
			"error", err,
		)
	}
}
