package database

import (
	"context"
	dbsql "database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/lexgrapher/helper"
)

// IndexType names a pgvector index method.
type IndexType string

const (
	IndexTypeHNSW    IndexType = "hnsw"
	IndexTypeIVFFlat IndexType = "ivfflat"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

type rowsScanner interface {
	scanner
	Next() bool
	Err() error
	Close() error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *dbsql.Row
}

// vectorParam converts an embedding to a pgvector parameter. Empty embeddings are stored as NULL.
func vectorParam(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// changeIndexType replaces the vector index of table with an index of the given type.
// params: optional parameters for index creation
//   - For HNSW: "m" (int, default 16), "ef_construction" (int, default 64)
//   - For IVFFlat: "lists" (int, default 100)
func changeIndexType(ctx context.Context, db *helper.Database, table string, indexType string, params map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	indexName := fmt.Sprintf("idx_%s_embedding", table)

	var createIndexSQL string
	switch IndexType(indexType) {
	case IndexTypeHNSW:
		m := 16
		efConstruction := 64

		if mVal, ok := params["m"].(int); ok {
			m = mVal
		}
		if efVal, ok := params["ef_construction"].(int); ok {
			efConstruction = efVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX %s ON %s USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			indexName, table, m, efConstruction,
		)

	case IndexTypeIVFFlat:
		lists := 100
		if listsVal, ok := params["lists"].(int); ok {
			lists = listsVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX %s ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			indexName, table, lists,
		)

	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	_, err := db.Instance.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS %s;`, indexName))
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	db.Logger.Info("Changed vector index", "table", table, "type", indexType, "params", params)

	return nil
}
