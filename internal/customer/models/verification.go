package models

import (
	"strings"
	"time"

	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// Status is the KYC state of a customer.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusInReview  Status = "IN_REVIEW"
	StatusOnHold    Status = "ON_HOLD"
	StatusRejected  Status = "REJECTED"
	StatusFlagged   Status = "FLAGGED"
	StatusVerified  Status = "VERIFIED"
)

var statuses = []Status{
	StatusPending,
	StatusSubmitted,
	StatusInReview,
	StatusOnHold,
	StatusRejected,
	StatusFlagged,
	StatusVerified,
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	for _, st := range statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Is compares case-insensitively; rows written by older tooling may use any case.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// Verification tracks a customer's KYC review.
//
// Invariants:
//   - StatusChangedAt only moves when Status actually changes
//   - Documents are ordered by creation
type Verification struct {
	ID              id.VerificationID `json:"id"`
	CustomerID      id.CustomerID     `json:"customer_id"`
	Status          Status            `json:"status"`
	Notes           string            `json:"notes"`
	Documents       []*KycDocument    `json:"documents"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	StatusChangedAt *time.Time        `json:"status_changed_at,omitempty"`
}

// CanChangeStatus rejects a transition to the status the verification already has.
func (v *Verification) CanChangeStatus(to Status) error {
	if v.Status.Is(to) {
		return dErrors.Newf(dErrors.CodeConflict, "verification is already %s", to)
	}
	return nil
}

// ApplyStatus records a transition. Callers check CanChangeStatus first.
func (v *Verification) ApplyStatus(to Status, notes string, now time.Time) {
	v.Status = to
	v.Notes = notes
	v.UpdatedAt = now
	v.StatusChangedAt = &now
}

// NeedsSubmission reports whether a document upload should move the
// verification to SUBMITTED.
func (v *Verification) NeedsSubmission() bool {
	return !v.Status.Is(StatusSubmitted)
}
