package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"protekt/internal/claim/models"
	"protekt/internal/platform/postgres"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Claim) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO claims (id, policy_id, staff_member_id, incident, date_of_incident, time_of_incident, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(c.ID), uuid.UUID(c.PolicyID), int64(c.StaffMemberID), c.Incident,
		c.DateOfIncident, c.TimeOfIncident, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.ClaimDocument) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO claim_documents (id, claim_id, file_id, document_type, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(doc.ID), uuid.UUID(doc.ClaimID), uuid.UUID(doc.FileID), doc.DocumentType,
		doc.Verified, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create claim document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	q := txcontext.Querier(ctx, s.db)
	var (
		c        models.Claim
		policyID uuid.UUID
		staffID  int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT policy_id, staff_member_id, incident, date_of_incident, time_of_incident, created_at, updated_at
		FROM claims
		WHERE id = $1
	`, uuid.UUID(claimID)).Scan(&policyID, &staffID, &c.Incident, &c.DateOfIncident, &c.TimeOfIncident, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	c.ID = claimID
	c.PolicyID = id.PolicyID(policyID)
	c.StaffMemberID = id.MemberID(staffID)
	c.Documents = []*models.ClaimDocument{}

	rows, err := q.QueryContext(ctx, `
		SELECT id, file_id, document_type, verified, created_at, updated_at
		FROM claim_documents
		WHERE claim_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list claim documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			doc        models.ClaimDocument
			docID, fID uuid.UUID
		)
		if err := rows.Scan(&docID, &fID, &doc.DocumentType, &doc.Verified, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan claim document: %w", err)
		}
		doc.ID = id.DocumentID(docID)
		doc.ClaimID = claimID
		doc.FileID = id.FileID(fID)
		c.Documents = append(c.Documents, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim documents: %w", err)
	}
	return &c, nil
}
