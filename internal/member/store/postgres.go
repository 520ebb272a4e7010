package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"protekt/internal/member/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

// PostgresStore reads the membership system's members table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const memberColumns = `id, type, first_name, last_name, gender, id_type, id_number, mobile, status`

func (s *PostgresStore) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, int64(memberID))
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member by id: %w", err)
	}
	return m, nil
}

// FirstCustomerByContact matches mobile OR id number; a NULL argument never
// compares equal, so an absent value simply drops out of the predicate.
func (s *PostgresStore) FirstCustomerByContact(ctx context.Context, phone, nrc *string) (*models.Member, error) {
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE type = 'CUSTOMER'
		AND (mobile = $1 OR id_number = $2)
		ORDER BY id
		LIMIT 1
	`, nullString(phone), nullString(nrc))
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer member by contact: %w", err)
	}
	return m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanMember(row *sql.Row) (*models.Member, error) {
	var (
		m        models.Member
		memberID int64
		gender   sql.NullString
		idType   sql.NullString
		status   sql.NullString
	)
	if err := row.Scan(&memberID, &m.Type, &m.FirstName, &m.LastName, &gender, &idType, &m.IDNumber, &m.Mobile, &status); err != nil {
		return nil, err
	}
	m.ID = id.MemberID(memberID)
	m.Gender = gender.String
	m.IDType = idType.String
	m.Status = status.String
	return &m, nil
}
