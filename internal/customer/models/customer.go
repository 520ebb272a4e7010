// Package models holds customers, their identity verification and KYC documents.
package models

import (
	"time"

	id "protekt/pkg/domain"
)

// Customer is a member enrolled for insurance. Every customer has exactly one
// Verification, created with it.
type Customer struct {
	ID        id.CustomerID `json:"id"`
	MemberID  id.MemberID   `json:"member_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewCustomer enrolls memberID and returns the customer with its PENDING
// verification.
func NewCustomer(customerID id.CustomerID, verificationID id.VerificationID, memberID id.MemberID, now time.Time) (*Customer, *Verification) {
	c := &Customer{
		ID:        customerID,
		MemberID:  memberID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	v := &Verification{
		ID:         verificationID,
		CustomerID: customerID,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return c, v
}
