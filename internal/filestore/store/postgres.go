package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"protekt/internal/filestore/models"
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

func (s *PostgresStore) Create(ctx context.Context, file *models.File) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO files (id, object_key, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(file.ID), file.Key, file.MimeType, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, fileID id.FileID) (*models.File, error) {
	var (
		f        models.File
		mimeType sql.NullString
	)
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, `
		SELECT object_key, mime_type, created_at, updated_at
		FROM files
		WHERE id = $1
	`, uuid.UUID(fileID)).Scan(&f.Key, &mimeType, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find file by id: %w", err)
	}
	f.ID = fileID
	if mimeType.Valid {
		f.MimeType = &mimeType.String
	}
	return &f, nil
}
