package repository

import (
	"context"

	"filegate/internal/model"
)

// DocumentRepository is the gateway's access to the portal-owned documents
// table. It is read for ownership fallbacks and written only to clean up the
// record after a successful object delete. SQL queries only; no business
// logic here.
type DocumentRepository interface {
	// FindByFileKey returns the ownership record for a file key.
	// Returns sql.ErrNoRows when no record exists.
	FindByFileKey(ctx context.Context, fileKey string) (*model.Document, error)

	// DeleteByFileKey removes the record for a file key. It returns nil if the
	// row was deleted or did not exist.
	DeleteByFileKey(ctx context.Context, fileKey string) error
}
