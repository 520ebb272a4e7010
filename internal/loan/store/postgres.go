package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"protekt/internal/loan/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

// PostgresStore reads loan contracts from the loan management schema. A
// contract's primary key is its loan application id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const loanColumns = `lc.application, la.member_id, lc.principal, lc.total_disbursed, lc.disbursed_at, lc.maturity_date, lc.status`

func (s *PostgresStore) FindByID(ctx context.Context, loanID id.LoanID) (*models.Loan, error) {
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM lms_loan_contracts lc
		JOIN lms_loan_applications la ON lc.application = la.id
		WHERE lc.application = $1
	`, int64(loanID))
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find loan by id: %w", err)
	}
	return loan, nil
}

// FindActiveByMember lists ACTIVE contracts whose application belongs to the member.
func (s *PostgresStore) FindActiveByMember(ctx context.Context, memberID id.MemberID) ([]*models.Loan, error) {
	rows, err := txcontext.Querier(ctx, s.db).QueryContext(ctx, `
		SELECT `+loanColumns+`
		FROM lms_loan_contracts lc
		JOIN lms_loan_applications la ON lc.application = la.id
		WHERE lc.status = 'ACTIVE'
		AND la.member_id = $1
		ORDER BY lc.application
	`, int64(memberID))
	if err != nil {
		return nil, fmt.Errorf("%w: find active loans: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active loan: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active loans: %w", err)
	}
	return loans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var (
		loan           models.Loan
		application    int64
		memberID       int64
		principal      decimal.Decimal
		totalDisbursed decimal.Decimal
		disbursedAt    sql.NullTime
		maturityDate   sql.NullTime
	)
	if err := row.Scan(&application, &memberID, &principal, &totalDisbursed, &disbursedAt, &maturityDate, &loan.Status); err != nil {
		return nil, err
	}
	loan.ID = id.LoanID(application)
	loan.MemberID = id.MemberID(memberID)
	loan.Principal = principal
	loan.TotalDisbursed = totalDisbursed
	if disbursedAt.Valid {
		t := disbursedAt.Time
		loan.DisbursedAt = &t
	}
	if maturityDate.Valid {
		t := maturityDate.Time
		loan.MaturityDate = &t
	}
	return &loan, nil
}
