package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDocumentPostgres_FindByFileKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "file_key", "file_name", "size", "content_type", "uploaded_by", "created_at"}).
			AddRow("doc-1", "documents/user-1/1_a_cv.pdf", "cv.pdf", 100, "application/pdf", "user-1", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE file_key = ?").
			WithArgs("documents/user-1/1_a_cv.pdf").
			WillReturnRows(rows)

		doc, err := repo.FindByFileKey(ctx, "documents/user-1/1_a_cv.pdf")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "user-1", doc.UploadedBy)
		assert.Equal(t, "documents/user-1/1_a_cv.pdf", doc.FileKey)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE file_key = ?").
			WithArgs("documents/missing/1_a_x.pdf").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByFileKey(ctx, "documents/missing/1_a_x.pdf")

		assert.Nil(t, doc)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_DeleteByFileKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE file_key = ?").
			WithArgs("documents/user-1/1_a_cv.pdf").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteByFileKey(ctx, "documents/user-1/1_a_cv.pdf"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE file_key = ?").
			WithArgs("documents/user-1/1_a_gone.pdf").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.DeleteByFileKey(ctx, "documents/user-1/1_a_gone.pdf"))
	})

	t.Run("db error propagates", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE file_key = ?").
			WithArgs("documents/user-1/1_a_cv.pdf").
			WillReturnError(errors.New("connection reset"))

		assert.Error(t, repo.DeleteByFileKey(ctx, "documents/user-1/1_a_cv.pdf"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
