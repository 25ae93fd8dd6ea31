package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
	"github.com/siherrmann/lexgrapher/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(ctx context.Context, doc *model.Document) error
	InsertDocuments(ctx context.Context, docs []*model.Document) error
	SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error)
	SelectDocumentsByMetadata(ctx context.Context, filter model.Fields, limit int) ([]*model.Document, error)
	SelectDocumentsByPathAncestor(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error)
	SelectDocumentsByPathDescendant(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error)
	SelectDocumentsBySimilarity(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.Document, error)
	UpdateDocumentEmbedding(ctx context.Context, doc *model.Document) error
	DeleteDocumentsBySource(ctx context.Context, source string) (int64, error)
	ReplaceDocumentsBySource(ctx context.Context, source string, docs []*model.Document) (int64, error)
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the document-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, embeddingDim int, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := sql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table with its indexes if it does not exist.
func (h *DocumentsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init documents", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument stores a document. A document with the same hash is not stored twice,
// the stored row is returned into doc instead.
func (h *DocumentsDBHandler) InsertDocument(ctx context.Context, doc *model.Document) error {
	return insertDocument(ctx, h.db.Instance, doc)
}

// InsertDocuments stores all documents in one transaction.
func (h *DocumentsDBHandler) InsertDocuments(ctx context.Context, docs []*model.Document) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		err := insertDocument(ctx, tx, doc)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert document %s", doc.Path()), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

func insertDocument(ctx context.Context, q querier, doc *model.Document) error {
	if doc.RID == uuid.Nil {
		doc.RID = uuid.New()
	}

	row := q.QueryRowContext(
		ctx,
		`SELECT * FROM insert_document($1, $2, $3, $4, $5, $6)`,
		doc.RID,
		doc.Content,
		doc.Metadata,
		doc.Path(),
		doc.Hash,
		vectorParam(doc.Embedding),
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by RID
func (h *DocumentsDBHandler) SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document($1)`,
		rid,
	)

	doc := &model.Document{}
	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectDocumentsByMetadata retrieves documents whose metadata contains every filter pair,
// e.g. kind=Paragraph and article_no=4. A limit of zero or less returns all matches.
func (h *DocumentsDBHandler) SelectDocumentsByMetadata(ctx context.Context, filter model.Fields, limit int) ([]*model.Document, error) {
	filterJSON, err := filterParam(filter)
	if err != nil {
		return nil, err
	}

	var limitParam interface{}
	if limit > 0 {
		limitParam = limit
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_metadata($1, $2)`,
		filterJSON,
		limitParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectDocuments(rows, false)
}

// SelectDocumentsByPathAncestor retrieves the documents above path, nearest first.
func (h *DocumentsDBHandler) SelectDocumentsByPathAncestor(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error) {
	filterJSON, err := filterParam(filter)
	if err != nil {
		return nil, err
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_path_ancestor($1, $2)`,
		path,
		filterJSON,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectDocuments(rows, false)
}

// SelectDocumentsByPathDescendant retrieves the documents below path, outermost first.
func (h *DocumentsDBHandler) SelectDocumentsByPathDescendant(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error) {
	filterJSON, err := filterParam(filter)
	if err != nil {
		return nil, err
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_path_descendant($1, $2)`,
		path,
		filterJSON,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectDocuments(rows, false)
}

// SelectDocumentsBySimilarity performs a cosine similarity search restricted by the
// filter and kinds of config. Results are ordered by descending similarity.
func (h *DocumentsDBHandler) SelectDocumentsBySimilarity(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.Document, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("similarity search", fmt.Errorf("embedding is empty"))
	}

	filterJSON, err := filterParam(config.Filter)
	if err != nil {
		return nil, err
	}

	var kindsParam interface{}
	if len(config.Kinds) > 0 {
		kindsParam = pq.Array(config.KindNames())
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_similarity($1, $2, $3, $4, $5)`,
		vectorParam(embedding),
		config.TopK,
		config.SimilarityThreshold,
		filterJSON,
		kindsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectDocuments(rows, true)
}

// UpdateDocumentEmbedding replaces the stored embedding of doc with doc.Embedding.
func (h *DocumentsDBHandler) UpdateDocumentEmbedding(ctx context.Context, doc *model.Document) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM update_document_embedding($1, $2)`,
		doc.RID,
		vectorParam(doc.Embedding),
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteDocumentsBySource deletes every document of a source with its chunks
// and returns the number of deleted documents.
func (h *DocumentsDBHandler) DeleteDocumentsBySource(ctx context.Context, source string) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_documents_by_source($1)`,
		source,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return deleted, nil
}

// ReplaceDocumentsBySource deletes every document of a source and stores docs in one transaction.
// If any insert fails, the previously stored documents and their chunks are kept.
// Returns the number of deleted documents.
func (h *DocumentsDBHandler) ReplaceDocumentsBySource(ctx context.Context, source string, docs []*model.Document) (int64, error) {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return 0, helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	var deleted int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT delete_documents_by_source($1)`,
		source,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("delete documents", err)
	}

	for _, doc := range docs {
		err := insertDocument(ctx, tx, doc)
		if err != nil {
			return 0, helper.NewError(fmt.Sprintf("insert document %s", doc.Path()), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, helper.NewError("commit transaction", err)
	}

	return deleted, nil
}

// ChangeIndexType changes the vector index of the documents table, see changeIndexType.
func (h *DocumentsDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return changeIndexType(ctx, h.db, "documents", indexType, params)
}

func scanDocument(row scanner, doc *model.Document, extra ...interface{}) error {
	dest := []interface{}{
		&doc.ID,
		&doc.RID,
		&doc.Content,
		&doc.Metadata,
		&doc.Hash,
		pq.Array(&doc.Embedding),
		&doc.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectDocuments(rows rowsScanner, withSimilarity bool) ([]*model.Document, error) {
	defer rows.Close()

	documents := []*model.Document{}
	for rows.Next() {
		doc := &model.Document{}

		var err error
		if withSimilarity {
			err = scanDocument(rows, doc, &doc.Similarity)
		} else {
			err = scanDocument(rows, doc)
		}
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		documents = append(documents, doc)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}

func filterParam(filter model.Fields) (string, error) {
	if len(filter) == 0 {
		return "{}", nil
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return "", helper.NewError("marshal filter", err)
	}
	return string(filterJSON), nil
}
