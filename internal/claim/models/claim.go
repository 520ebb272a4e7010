// Package models describes insurance claims filed against policies.
package models

import (
	"strings"
	"time"

	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// DocumentEvidence is the type given to every file attached to a claim.
const DocumentEvidence = "EVIDENCE"

// Claim is an incident reported by a staff member against a policy.
// DateOfIncident is a calendar date; TimeOfIncident is an optional "15:04"
// wall clock time.
type Claim struct {
	ID             id.ClaimID       `json:"id"`
	PolicyID       id.PolicyID      `json:"policy_id"`
	StaffMemberID  id.MemberID      `json:"staff_member_id"`
	Incident       string           `json:"incident"`
	DateOfIncident time.Time        `json:"date_of_incident"`
	TimeOfIncident string           `json:"time_of_incident,omitempty"`
	Documents      []*ClaimDocument `json:"documents"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ClaimDocument links an uploaded file to a claim.
type ClaimDocument struct {
	ID           id.DocumentID `json:"id"`
	ClaimID      id.ClaimID    `json:"claim_id"`
	FileID       id.FileID     `json:"file_id"`
	DocumentType string        `json:"document_type"`
	Verified     bool          `json:"verified"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewClaim(claimID id.ClaimID, policyID id.PolicyID, staffMemberID id.MemberID, incident string, dateOfIncident time.Time, timeOfIncident string, now time.Time) (*Claim, error) {
	incident = strings.TrimSpace(incident)
	if incident == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "incident cannot be blank")
	}
	if dateOfIncident.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "date of incident is required")
	}
	y, m, d := dateOfIncident.Date()
	return &Claim{
		ID:             claimID,
		PolicyID:       policyID,
		StaffMemberID:  staffMemberID,
		Incident:       incident,
		DateOfIncident: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TimeOfIncident: strings.TrimSpace(timeOfIncident),
		Documents:      []*ClaimDocument{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AttachEvidence records fileID as unverified evidence of c.
func (c *Claim) AttachEvidence(docID id.DocumentID, fileID id.FileID, now time.Time) *ClaimDocument {
	doc := &ClaimDocument{
		ID:           docID,
		ClaimID:      c.ID,
		FileID:       fileID,
		DocumentType: DocumentEvidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.Documents = append(c.Documents, doc)
	return doc
}
