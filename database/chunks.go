package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
	loadSql "github.com/siherrmann/lexgrapher/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	DeleteChunk(ctx context.Context, id int) error
	SelectChunk(ctx context.Context, id int) (*model.Chunk, error)
	SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error)
	SelectChunksByPathDescendant(ctx context.Context, path string) ([]*model.Chunk, error)
	SelectChunksByPathAncestor(ctx context.Context, path string) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64, documentRIDs []uuid.UUID) ([]*model.Chunk, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// The documents table has to exist, chunks reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with its indexes if it does not exist.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8)`,
		chunk.DocumentID,
		chunk.Content,
		chunk.Path,
		vectorParam(chunk.Embedding),
		chunk.StartPos,
		chunk.EndPos,
		chunk.ChunkIndex,
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(ctx context.Context, id int) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_chunk($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByDocument retrieves all chunks for a document in chunk order
func (h *ChunksDBHandler) SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectChunks(rows, false)
}

// SelectChunksByPathDescendant retrieves chunks at or below the given path
func (h *ChunksDBHandler) SelectChunksByPathDescendant(ctx context.Context, path string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_path_descendant($1)`,
		path,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectChunks(rows, false)
}

// SelectChunksByPathAncestor retrieves chunks at or above the given path
func (h *ChunksDBHandler) SelectChunksByPathAncestor(ctx context.Context, path string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_path_ancestor($1)`,
		path,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectChunks(rows, false)
}

// SelectChunksBySimilarity performs vector similarity search
// If documentRIDs is nil or empty, searches across all documents
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64, documentRIDs []uuid.UUID) ([]*model.Chunk, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("similarity search", fmt.Errorf("embedding is empty"))
	}

	var documentRIDsParam interface{}
	if len(documentRIDs) > 0 {
		documentRIDsParam = pq.Array(documentRIDs)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		vectorParam(embedding),
		limit,
		threshold,
		documentRIDsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	return collectChunks(rows, true)
}

// ChangeIndexType changes the vector index of the chunks table, see changeIndexType.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return changeIndexType(ctx, h.db, "chunks", indexType, params)
}

func scanChunk(row scanner, chunk *model.Chunk, extra ...interface{}) error {
	dest := []interface{}{
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.DocumentRID,
		&chunk.Content,
		&chunk.Path,
		pq.Array(&chunk.Embedding),
		&chunk.StartPos,
		&chunk.EndPos,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectChunks(rows rowsScanner, withSimilarity bool) ([]*model.Chunk, error) {
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}

		var err error
		if withSimilarity {
			err = scanChunk(rows, chunk, &chunk.Similarity)
		} else {
			err = scanChunk(rows, chunk)
		}
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}
