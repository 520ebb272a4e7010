package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"protekt/internal/premium"
	"protekt/internal/product/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	txcontext "protekt/pkg/platform/tx"
)

// PostgresStore persists products and their ordered properties.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts the product and replaces its property list.
func (s *PostgresStore) Save(ctx context.Context, product *models.Product) error {
	if _, ok := txcontext.From(ctx); ok {
		return s.save(ctx, txcontext.Querier(ctx, s.db), product)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin product save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := s.save(ctx, tx, product); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product save: %w", err)
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, q txcontext.DBTX, product *models.Product) error {
	query := `
		INSERT INTO products (
			id, provider, provider_product_id, name, description, beneficiary_type,
			duration_value, duration_unit, calculation_method, requires_complex_calculation,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			provider = EXCLUDED.provider,
			provider_product_id = EXCLUDED.provider_product_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			beneficiary_type = EXCLUDED.beneficiary_type,
			duration_value = EXCLUDED.duration_value,
			duration_unit = EXCLUDED.duration_unit,
			calculation_method = EXCLUDED.calculation_method,
			requires_complex_calculation = EXCLUDED.requires_complex_calculation,
			updated_at = EXCLUDED.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		uuid.UUID(product.ID),
		product.Provider,
		product.ProviderProductID,
		product.Name,
		product.Description,
		string(product.BeneficiaryType),
		product.Duration.Value,
		string(product.Duration.Unit),
		string(product.Method),
		product.RequiresComplexCalculation,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM product_properties WHERE product_id = $1`, uuid.UUID(product.ID)); err != nil {
		return fmt.Errorf("clear product properties: %w", err)
	}
	for i, prop := range product.Properties {
		_, err := q.ExecContext(ctx, `
			INSERT INTO product_properties (product_id, position, key, value, value_type)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.UUID(product.ID), i, prop.Key, prop.Value, prop.ValueType)
		if err != nil {
			return fmt.Errorf("save product property %q: %w", prop.Key, err)
		}
	}
	return nil
}

// FindByID loads a product with its properties in configured order and builds
// its rate table.
func (s *PostgresStore) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	q := txcontext.Querier(ctx, s.db)

	var (
		p      models.Product
		rawID  uuid.UUID
		method string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, provider, provider_product_id, name, description, beneficiary_type,
			duration_value, duration_unit, calculation_method, requires_complex_calculation,
			created_at, updated_at
		FROM products
		WHERE id = $1
	`, uuid.UUID(productID)).Scan(
		&rawID,
		&p.Provider,
		&p.ProviderProductID,
		&p.Name,
		&p.Description,
		&p.BeneficiaryType,
		&p.Duration.Value,
		&p.Duration.Unit,
		&method,
		&p.RequiresComplexCalculation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	p.ID = id.ProductID(rawID)

	rows, err := q.QueryContext(ctx, `
		SELECT key, value, value_type
		FROM product_properties
		WHERE product_id = $1
		ORDER BY position
	`, rawID)
	if err != nil {
		return nil, fmt.Errorf("find product properties: %w", err)
	}
	defer rows.Close()

	var props []premium.Property
	for rows.Next() {
		var prop premium.Property
		if err := rows.Scan(&prop.Key, &prop.Value, &prop.ValueType); err != nil {
			return nil, fmt.Errorf("scan product property: %w", err)
		}
		props = append(props, prop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product properties: %w", err)
	}

	p.SetPricing(premium.ParseMethod(method), props)
	return &p, nil
}
