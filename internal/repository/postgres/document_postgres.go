package postgres

import (
	"context"
	"database/sql"

	"filegate/internal/model"
	"filegate/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// FindByFileKey fetches the ownership record for a file key.
func (r *DocumentPostgres) FindByFileKey(ctx context.Context, fileKey string) (*model.Document, error) {
	const q = `
		SELECT id, file_key, file_name, size, content_type, uploaded_by, created_at
		FROM documents
		WHERE file_key = $1
	`
	row := r.db.QueryRowContext(ctx, q, fileKey)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.FileKey,
		&d.FileName,
		&d.Size,
		&d.ContentType,
		&d.UploadedBy,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteByFileKey removes the record for a file key. A missing row is not an error.
func (r *DocumentPostgres) DeleteByFileKey(ctx context.Context, fileKey string) error {
	const q = `DELETE FROM documents WHERE file_key = $1`
	res, err := r.db.ExecContext(ctx, q, fileKey)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
