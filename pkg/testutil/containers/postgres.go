//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"protekt/internal/platform/postgres"
)

// PostgresContainer wraps a migrated PostgreSQL instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// externalSchema stands in for tables owned by the membership and loan systems.
const externalSchema = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    type VARCHAR(60) NOT NULL DEFAULT 'CUSTOMER',
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    gender VARCHAR(40),
    id_type VARCHAR(60) DEFAULT 'NATIONAL',
    id_number VARCHAR(60) NOT NULL,
    mobile VARCHAR(25) NOT NULL,
    status VARCHAR(60) DEFAULT 'PENDING'
);
CREATE TABLE IF NOT EXISTS lms_loan_applications (
    id BIGSERIAL PRIMARY KEY,
    member_id BIGINT NOT NULL,
    customer_id BIGINT
);
CREATE TABLE IF NOT EXISTS lms_loan_contracts (
    application BIGINT PRIMARY KEY REFERENCES lms_loan_applications(id),
    principal NUMERIC(18, 8) NOT NULL,
    total_disbursed NUMERIC(18, 8) NOT NULL,
    disbursed_at TIMESTAMPTZ,
    maturity_date TIMESTAMPTZ,
    status VARCHAR(50) NOT NULL
);
`

func startPostgres() (*PostgresContainer, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("protekt"),
		tcpostgres.WithUsername("protekt"),
		tcpostgres.WithPassword("protekt"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get postgres connection string: %w", err)
	}

	db, err := postgres.Open(ctx, dsn, 20)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if _, err := db.ExecContext(ctx, externalSchema); err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("create external schema: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}, nil
}

// TruncateTables empties the given tables. Use between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	return err
}
