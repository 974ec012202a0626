package store

import (
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var documentTableName = table("application_documents")

var documentColumns = utils.StructTagValues(types.ApplicationDocument{})

type DocumentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Document retrieves a document scoped to the application it belongs to
func (r *DocumentRepository) Document(ctx context.Context, applicationID, documentID string) (*types.ApplicationDocument, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": documentID, "application_id": applicationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc = new(types.ApplicationDocument)
	err = pgxscan.Get(ctx, r.db, doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return doc, nil
}

// DocumentsByApplication retrieves all documents for an application, newest first
func (r *DocumentRepository) DocumentsByApplication(ctx context.Context, applicationID string) ([]*types.ApplicationDocument, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"application_id": applicationID}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var docs = make([]*types.ApplicationDocument, 0)
	err = pgxscan.Select(ctx, r.db, &docs, query, args...)
	return docs, utils.ErrorWrapOrNil(err, "failed to fetch documents")
}

// Create inserts a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *types.ApplicationDocument) error {
	query, args, err := psql().
		Insert(documentTableName).
		Columns(documentColumns...).
		Values(
			doc.ID,
			doc.ApplicationID,
			doc.UserID,
			doc.DocumentType,
			doc.FileName,
			doc.FileSizeBytes,
			doc.MimeType,
			doc.StorageKey,
			doc.UploadedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate document insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert document")
}

// Delete removes a document record
func (r *DocumentRepository) Delete(ctx context.Context, applicationID, documentID string) error {
	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": documentID, "application_id": applicationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate document delete query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete document")
}
