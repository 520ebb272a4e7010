// Package domain holds typed identifiers shared across modules.
//
// Entities owned by this system carry UUID identifiers. Loans and members are
// owned by external systems and keep their numeric keys.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "protekt/pkg/domain-errors"
)

type (
	ProductID      uuid.UUID
	PolicyID       uuid.UUID
	CalculationID  uuid.UUID
	CustomerID     uuid.UUID
	VerificationID uuid.UUID
	DocumentID     uuid.UUID
	FileID         uuid.UUID
	ClaimID        uuid.UUID
)

// LoanID is the loan application id of an external loan contract.
type LoanID int64

// MemberID identifies a record in the external membership system.
type MemberID int64

func (id ProductID) String() string      { return uuid.UUID(id).String() }
func (id PolicyID) String() string       { return uuid.UUID(id).String() }
func (id CalculationID) String() string  { return uuid.UUID(id).String() }
func (id CustomerID) String() string     { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id FileID) String() string         { return uuid.UUID(id).String() }
func (id ClaimID) String() string        { return uuid.UUID(id).String() }
func (id LoanID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id MemberID) String() string       { return strconv.FormatInt(int64(id), 10) }

func (id ProductID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CustomerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s, "product")
	return ProductID(u), err
}

func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy")
	return PolicyID(u), err
}

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := parseUUID(s, "customer")
	return CustomerID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document")
	return DocumentID(u), err
}

func ParseClaimID(s string) (ClaimID, error) {
	u, err := parseUUID(s, "claim")
	return ClaimID(u), err
}

// ParseLoanID parses a positive numeric loan application id.
func ParseLoanID(s string) (LoanID, error) {
	n, err := parsePositiveInt(s, "loan")
	return LoanID(n), err
}

// ParseMemberID parses a positive numeric member id.
func ParseMemberID(s string) (MemberID, error) {
	n, err := parsePositiveInt(s, "member")
	return MemberID(n), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, kind+" id cannot be nil")
	}
	return u, nil
}

func parsePositiveInt(s, kind string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeValidation, kind+" id cannot be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, "invalid "+kind+" id")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, kind+" id must be positive")
	}
	return n, nil
}
