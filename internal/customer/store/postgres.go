package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"protekt/internal/customer/models"
	"protekt/internal/platform/postgres"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

// PostgresStore persists the customer aggregate. Writes join the transaction
// carried in the context, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO customers (id, member_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(c.ID), int64(c.MemberID), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindCustomerByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	return s.findCustomer(ctx, `WHERE id = $1`, uuid.UUID(customerID))
}

func (s *PostgresStore) FindCustomerByMember(ctx context.Context, memberID id.MemberID) (*models.Customer, error) {
	return s.findCustomer(ctx, `WHERE member_id = $1`, int64(memberID))
}

func (s *PostgresStore) findCustomer(ctx context.Context, where string, arg any) (*models.Customer, error) {
	var (
		c        models.Customer
		rawID    uuid.UUID
		memberID int64
	)
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, member_id, created_at, updated_at FROM customers `+where, arg,
	).Scan(&rawID, &memberID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c.ID = id.CustomerID(rawID)
	c.MemberID = id.MemberID(memberID)
	return &c, nil
}

func (s *PostgresStore) CreateVerification(ctx context.Context, v *models.Verification) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO customer_verifications (id, customer_id, status, notes, created_at, updated_at, status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(v.ID), uuid.UUID(v.CustomerID), string(v.Status), v.Notes, v.CreatedAt, v.UpdatedAt, v.StatusChangedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create verification: %w", err)
	}
	return nil
}

// FindVerification returns the customer's verification with its documents in
// creation order.
func (s *PostgresStore) FindVerification(ctx context.Context, customerID id.CustomerID) (*models.Verification, error) {
	return s.findVerification(ctx, customerID, "")
}

// FindVerificationForUpdate is FindVerification holding a row lock on the
// verification until the surrounding transaction ends. Outside a transaction
// the lock is released as soon as the statement completes.
func (s *PostgresStore) FindVerificationForUpdate(ctx context.Context, customerID id.CustomerID) (*models.Verification, error) {
	return s.findVerification(ctx, customerID, " FOR UPDATE")
}

func (s *PostgresStore) findVerification(ctx context.Context, customerID id.CustomerID, lock string) (*models.Verification, error) {
	q := txcontext.Querier(ctx, s.db)

	var (
		v             models.Verification
		rawID         uuid.UUID
		status        string
		statusChanged sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, status, notes, created_at, updated_at, status_changed_at
		FROM customer_verifications
		WHERE customer_id = $1`+lock, uuid.UUID(customerID)).Scan(&rawID, &status, &v.Notes, &v.CreatedAt, &v.UpdatedAt, &statusChanged)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	v.ID = id.VerificationID(rawID)
	v.CustomerID = customerID
	v.Status = models.Status(status)
	if statusChanged.Valid {
		v.StatusChangedAt = &statusChanged.Time
	}

	rows, err := q.QueryContext(ctx, documentColumns+`
		WHERE verification_id = $1
		ORDER BY created_at, id
	`, rawID)
	if err != nil {
		return nil, fmt.Errorf("list kyc documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		v.Documents = append(v.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kyc documents: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) UpdateVerification(ctx context.Context, v *models.Verification) error {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE customer_verifications
		SET status = $2, notes = $3, updated_at = $4, status_changed_at = $5
		WHERE id = $1
	`, uuid.UUID(v.ID), string(v.Status), v.Notes, v.UpdatedAt, v.StatusChangedAt)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.KycDocument) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO kyc_documents (id, customer_id, verification_id, file_id, document_type, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.CustomerID),
		uuid.UUID(doc.VerificationID),
		uuid.UUID(doc.FileID),
		doc.DocumentType,
		doc.Verified,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create kyc document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindDocument(ctx context.Context, docID id.DocumentID) (*models.KycDocument, error) {
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, documentColumns+` WHERE id = $1`, uuid.UUID(docID))
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *PostgresStore) MarkDocumentsVerified(ctx context.Context, verificationID id.VerificationID, now time.Time) (int, error) {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE kyc_documents
		SET verified = TRUE, updated_at = $2
		WHERE verification_id = $1 AND verified = FALSE
	`, uuid.UUID(verificationID), now)
	if err != nil {
		return 0, fmt.Errorf("mark kyc documents verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark kyc documents verified rows affected: %w", err)
	}
	return int(n), nil
}

const documentColumns = `
	SELECT id, customer_id, verification_id, file_id, document_type, verified, created_at, updated_at
	FROM kyc_documents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.KycDocument, error) {
	var (
		doc                                    models.KycDocument
		docID, customerID, verificationID, fID uuid.UUID
	)
	err := row.Scan(&docID, &customerID, &verificationID, &fID, &doc.DocumentType, &doc.Verified, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan kyc document: %w", err)
	}
	doc.ID = id.DocumentID(docID)
	doc.CustomerID = id.CustomerID(customerID)
	doc.VerificationID = id.VerificationID(verificationID)
	doc.FileID = id.FileID(fID)
	return &doc, nil
}
