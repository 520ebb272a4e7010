package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"protekt/internal/platform/postgres"
	"protekt/internal/policy/models"
	"protekt/internal/premium"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

// PostgresStore relies on the policies_loan_id_key unique constraint for the
// one-policy-per-loan rule, so concurrent binds of a loan race safely.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Policy) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO policies (
			id, product_id, customer_id, loan_id, loan_amount, premium_percentage,
			premium_value, policy_start, policy_end, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(p.ID),
		uuid.UUID(p.ProductID),
		uuid.UUID(p.CustomerID),
		int64(p.LoanID),
		p.LoanAmount,
		p.PremiumPercentage,
		p.PremiumValue,
		p.PolicyStart,
		p.PolicyEnd,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, postgres.ConstraintName(err))
		}
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Policy) error {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE policies SET
			product_id = $2,
			customer_id = $3,
			loan_id = $4,
			loan_amount = $5,
			premium_percentage = $6,
			premium_value = $7,
			policy_start = $8,
			policy_end = $9,
			updated_at = $10
		WHERE id = $1
	`,
		uuid.UUID(p.ID),
		uuid.UUID(p.ProductID),
		uuid.UUID(p.CustomerID),
		int64(p.LoanID),
		p.LoanAmount,
		p.PremiumPercentage,
		p.PremiumValue,
		p.PolicyStart,
		p.PolicyEnd,
		p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, postgres.ConstraintName(err))
		}
		return fmt.Errorf("update policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update policy rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const policyColumns = `
	SELECT id, product_id, customer_id, loan_id, loan_amount, premium_percentage,
		premium_value, policy_start, policy_end, created_at, updated_at
	FROM policies`

func (s *PostgresStore) FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	return s.findOne(ctx, policyColumns+` WHERE id = $1`, uuid.UUID(policyID))
}

func (s *PostgresStore) FindByLoanID(ctx context.Context, loanID id.LoanID) (*models.Policy, error) {
	return s.findOne(ctx, policyColumns+` WHERE loan_id = $1`, int64(loanID))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Policy, error) {
	var (
		p                            models.Policy
		rawID, productID, customerID uuid.UUID
		loanID                       int64
		start, end                   sql.NullTime
	)
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(
		&rawID,
		&productID,
		&customerID,
		&loanID,
		&p.LoanAmount,
		&p.PremiumPercentage,
		&p.PremiumValue,
		&start,
		&end,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	p.ID = id.PolicyID(rawID)
	p.ProductID = id.ProductID(productID)
	p.CustomerID = id.CustomerID(customerID)
	p.LoanID = id.LoanID(loanID)
	if start.Valid {
		p.PolicyStart = &start.Time
	}
	if end.Valid {
		p.PolicyEnd = &end.Time
	}
	return &p, nil
}

// ExistsForAnyLoan reports whether any of loanIDs is bound by a policy.
func (s *PostgresStore) ExistsForAnyLoan(ctx context.Context, loanIDs []id.LoanID) (bool, error) {
	if len(loanIDs) == 0 {
		return false, nil
	}
	ids := make([]int64, len(loanIDs))
	for i, l := range loanIDs {
		ids[i] = int64(l)
	}
	var exists bool
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM policies WHERE loan_id = ANY($1))`,
		pq.Array(ids),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check policies for loans: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) AppendCalculation(ctx context.Context, c *premium.Calculation) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO premium_calculations (
			id, policy_id, calculation_method, base_amount, premium_rate, gross_premium,
			tax_rate, tax_amount, levy_rate, levy_amount, admin_fee_rate, admin_fee_amount,
			net_premium, total_premium, provider_calculation_ref, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		uuid.UUID(c.ID),
		uuid.UUID(c.PolicyID),
		string(c.Method),
		c.BaseAmount,
		c.PremiumRate,
		c.GrossPremium,
		c.TaxRate,
		c.TaxAmount,
		c.LevyRate,
		c.LevyAmount,
		c.AdminFeeRate,
		c.AdminFee,
		c.NetPremium,
		c.TotalPremium,
		c.ProviderRef,
		c.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append premium calculation: %w", err)
	}
	return nil
}

// ListCalculations returns the policy's history, oldest first.
func (s *PostgresStore) ListCalculations(ctx context.Context, policyID id.PolicyID) ([]*premium.Calculation, error) {
	rows, err := txcontext.Querier(ctx, s.db).QueryContext(ctx, `
		SELECT id, calculation_method, base_amount, premium_rate, gross_premium,
			tax_rate, tax_amount, levy_rate, levy_amount, admin_fee_rate, admin_fee_amount,
			net_premium, total_premium, provider_calculation_ref, created_at
		FROM premium_calculations
		WHERE policy_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(policyID))
	if err != nil {
		return nil, fmt.Errorf("list premium calculations: %w", err)
	}
	defer rows.Close()

	var out []*premium.Calculation
	for rows.Next() {
		var (
			c           premium.Calculation
			rawID       uuid.UUID
			method      string
			providerRef sql.NullString
		)
		err := rows.Scan(
			&rawID,
			&method,
			&c.BaseAmount,
			&c.PremiumRate,
			&c.GrossPremium,
			&c.TaxRate,
			&c.TaxAmount,
			&c.LevyRate,
			&c.LevyAmount,
			&c.AdminFeeRate,
			&c.AdminFee,
			&c.NetPremium,
			&c.TotalPremium,
			&providerRef,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan premium calculation: %w", err)
		}
		c.ID = id.CalculationID(rawID)
		c.PolicyID = policyID
		c.Method = premium.ParseMethod(method)
		if providerRef.Valid {
			c.ProviderRef = &providerRef.String
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate premium calculations: %w", err)
	}
	return out, nil
}
