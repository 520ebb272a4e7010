package models

import (
	"strings"
	"time"

	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// Document types seen in practice. Other non-blank types are accepted.
const (
	DocumentNationalID       = "NATIONAL_ID"
	DocumentPassport         = "PASSPORT"
	DocumentBirthCertificate = "BIRTH_CERTIFICATE"
	DocumentDrivingLicense   = "DRIVING_LICENSE"
	DocumentVoterCard        = "VOTER_CARD"
	DocumentHudumaCard       = "HUDUMA_CARD"
	DocumentMilitaryID       = "MILITARY_ID"
	DocumentAlienID          = "ALIEN_ID"
	DocumentRefugeeID        = "REFUGEE_ID"
)

// NormalizeDocumentType trims and upper-cases t. Blank types are invalid.
func NormalizeDocumentType(t string) (string, error) {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "document type cannot be blank")
	}
	return t, nil
}

// KycDocument links an uploaded file to a verification. Verified only ever
// goes from false to true, when the verification becomes VERIFIED.
type KycDocument struct {
	ID             id.DocumentID     `json:"id"`
	CustomerID     id.CustomerID     `json:"customer_id"`
	VerificationID id.VerificationID `json:"verification_id"`
	FileID         id.FileID         `json:"file_id"`
	DocumentType   string            `json:"document_type"`
	Verified       bool              `json:"verified"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func NewKycDocument(docID id.DocumentID, v *Verification, fileID id.FileID, documentType string, now time.Time) (*KycDocument, error) {
	t, err := NormalizeDocumentType(documentType)
	if err != nil {
		return nil, err
	}
	return &KycDocument{
		ID:             docID,
		CustomerID:     v.CustomerID,
		VerificationID: v.ID,
		FileID:         fileID,
		DocumentType:   t,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
