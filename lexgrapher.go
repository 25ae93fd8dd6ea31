package lexgrapher

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/lexgrapher/core/index"
	"github.com/siherrmann/lexgrapher/core/loader"
	"github.com/siherrmann/lexgrapher/core/parser"
	"github.com/siherrmann/lexgrapher/core/pipeline"
	"github.com/siherrmann/lexgrapher/core/retrieval"
	"github.com/siherrmann/lexgrapher/database"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
	loadSql "github.com/siherrmann/lexgrapher/sql"
)

// Chunking parameters of the default pipeline.
const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 30
	DefaultSeparator    = ";"
)

// Lexgrapher bundles parsing, storage and retrieval of statutes
type Lexgrapher struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Parser    *parser.Parser
	Pipeline  *pipeline.Pipeline // Optional chunking and embedding pipeline
	Engine    *retrieval.Engine
	// Logging
	log *slog.Logger
}

// NewLexgrapher connects to the database and initializes all handlers
func NewLexgrapher(config *helper.DatabaseConfiguration, embeddingDim int) (*Lexgrapher, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db, err := helper.NewDatabase("lexgrapher", config, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		db.Close()
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Documents first, chunks reference them
	documents, err := database.NewDocumentsDBHandler(db, embeddingDim, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create chunks handler", err)
	}

	parserConfig := parser.DefaultConfig()
	parserConfig.Logger = logger

	return &Lexgrapher{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Parser:    parser.New(parserConfig),
		Engine:    retrieval.NewEngine(documents, chunks),
		log:       logger,
	}, nil
}

// Close closes the database connection
func (g *Lexgrapher) Close() error {
	return g.DB.Close()
}

// SetPipeline sets the chunking and embedding pipeline
func (g *Lexgrapher) SetPipeline(pipeline *pipeline.Pipeline) {
	g.Pipeline = pipeline
}

// SetParser replaces the statute parser, e.g. with one using other keywords
func (g *Lexgrapher) SetParser(p *parser.Parser) {
	g.Parser = p
}

// UseDefaultPipeline splits documents on ";" into chunks of 200 characters with an overlap of 30
// and embeds with DefaultEmbedder (all-MiniLM-L6-v2, 384 dimensions).
func (g *Lexgrapher) UseDefaultPipeline() error {
	chunker := pipeline.SeparatorChunker(DefaultChunkSize, DefaultChunkOverlap, DefaultSeparator, true)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	g.Pipeline = pipeline.NewPipeline(chunker, embedder)
	return nil
}

// ParseFile parses a statute file and indexes its records.
func (g *Lexgrapher) ParseFile(path string) (*index.Index, error) {
	collections, err := g.Parser.ParseFile(path)
	if err != nil {
		return nil, helper.NewError("parse file", err)
	}
	return index.New(collections), nil
}

// IngestFile parses a statute file, embeds every record and stores it as a document.
// Documents previously stored for the same source are replaced. If the pipeline has a
// chunker, the chunks of every document are stored as well.
// An empty source defaults to the base name of the file.
// Returns the number of documents stored.
func (g *Lexgrapher) IngestFile(ctx context.Context, path string, source string) (int, error) {
	if g.Pipeline == nil || g.Pipeline.Embedder == nil {
		return 0, helper.NewError("ingest file", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	opts := []loader.Option{loader.WithParser(g.Parser), loader.WithLogger(g.log)}
	if source != "" {
		opts = append(opts, loader.WithSource(source))
	}
	l := loader.New(path, opts...)

	docs, err := l.Load()
	if err != nil {
		return 0, helper.NewError("ingest file", err)
	}

	err = g.Pipeline.EmbedDocuments(docs)
	if err != nil {
		return 0, helper.NewError("ingest file", err)
	}

	deleted, err := g.Documents.ReplaceDocumentsBySource(ctx, l.Source(), docs)
	if err != nil {
		return 0, helper.NewError("replace source", err)
	}
	if deleted > 0 {
		g.log.Info("Replaced stored documents", slog.String("source", l.Source()), slog.Int64("deleted", deleted))
	}

	if g.Pipeline.Chunker != nil {
		numChunks, err := g.insertChunks(ctx, docs)
		if err != nil {
			return 0, err
		}
		g.log.Info("Inserted chunks", slog.String("source", l.Source()), slog.Int("num_chunks", numChunks))
	}

	g.log.Info("Ingested file", slog.String("source", l.Source()), slog.Int("num_documents", len(docs)))

	return len(docs), nil
}

// insertChunks stores the chunks of every distinct stored document.
func (g *Lexgrapher) insertChunks(ctx context.Context, docs []*model.Document) (int, error) {
	seen := make(map[int64]bool, len(docs))
	numChunks := 0
	for _, doc := range docs {
		if seen[doc.ID] || doc.Content == "" {
			continue
		}
		seen[doc.ID] = true

		chunks, err := g.Pipeline.Process(doc)
		if err != nil {
			return numChunks, helper.NewError("process chunks", err)
		}

		for i, chunk := range chunks {
			if err := g.Chunks.InsertChunk(ctx, chunk); err != nil {
				return numChunks, helper.NewError(fmt.Sprintf("insert chunk %d of %s", i, doc.Path()), err)
			}
			numChunks++
		}
	}
	return numChunks, nil
}

// Search embeds the query and retrieves documents with the strategy named by config.Method.
func (g *Lexgrapher) Search(ctx context.Context, query string, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	strategy, err := retrieval.NewStrategy(g.Engine, config.Method)
	if err != nil {
		return nil, helper.NewError("search", err)
	}

	var embedding []float32
	if config.Method != model.RetrievalMethodMetadata {
		if g.Pipeline == nil || g.Pipeline.Embedder == nil {
			return nil, helper.NewError("search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
		}

		embedding, err = g.Pipeline.Embedder(query)
		if err != nil {
			return nil, helper.NewError("generate embedding", err)
		}
	}

	return strategy.Retrieve(ctx, embedding, config)
}

// ChangeIndexType changes the vector index type of documents and chunks between HNSW and IVFFlat
func (g *Lexgrapher) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if err := g.Documents.ChangeIndexType(ctx, indexType, params); err != nil {
		return err
	}
	return g.Chunks.ChangeIndexType(ctx, indexType, params)
}
