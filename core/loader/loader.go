package loader

import (
	"encoding/hex"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/siherrmann/lexgrapher/core/parser"
	"github.com/siherrmann/lexgrapher/core/pipeline"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
	"github.com/zeebo/blake3"
)

// Loader parses a statute file and turns every record into a document.
type Loader struct {
	path   string
	source string
	parser *parser.Parser
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource overrides the source label, which defaults to the base name of the file.
func WithSource(source string) Option {
	return func(l *Loader) {
		l.source = source
	}
}

// WithParser sets the parser, e.g. one with custom keywords.
func WithParser(p *parser.Parser) Option {
	return func(l *Loader) {
		l.parser = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a loader for the file at path.
func New(path string, opts ...Option) *Loader {
	l := &Loader{
		path:   path,
		source: filepath.Base(path),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.parser == nil {
		cfg := parser.DefaultConfig()
		cfg.Logger = l.logger
		l.parser = parser.New(cfg)
	}
	return l
}

// Source returns the source label written into the document metadata.
func (l *Loader) Source() string {
	return l.source
}

// Parse parses the file into record collections.
func (l *Loader) Parse() (*model.Collections, error) {
	collections, err := l.parser.ParseFile(l.path)
	if err != nil {
		return nil, helper.NewError("load", err)
	}
	return collections, nil
}

// Load returns one document per record: chapters first, then articles, paragraphs, points and subpoints.
func (l *Loader) Load() ([]*model.Document, error) {
	collections, err := l.Parse()
	if err != nil {
		return nil, err
	}

	records := collections.All()
	docs := make([]*model.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, DocumentFrom(r, l.source))
	}

	l.logger.Info("Loaded documents", slog.String("source", l.source), slog.Int("count", len(docs)))
	return docs, nil
}

// LoadAndSplit loads the documents and splits each of them with chunk.
func (l *Loader) LoadAndSplit(chunk pipeline.ChunkFunc) ([]*model.Chunk, error) {
	docs, err := l.Load()
	if err != nil {
		return nil, err
	}

	var chunks []*model.Chunk
	for _, doc := range docs {
		docChunks, err := pipeline.SplitDocument(chunk, doc)
		if err != nil {
			return nil, helper.NewError("load and split", err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

// DocumentFrom creates the document of a record. The record text becomes the content,
// the scoping keys, kind and source become the metadata.
func DocumentFrom(r model.Record, source string) *model.Document {
	metadata := model.NewMetadata(r, source)
	return &model.Document{
		RID:      uuid.New(),
		Content:  r.Content(),
		Metadata: metadata,
		Hash:     Hash(r.Content(), metadata),
	}
}

// Hash returns the hex encoded BLAKE3 digest of content and metadata.
// Metadata keys are serialized in sorted order, so equal records hash equally.
func Hash(content string, metadata model.Metadata) string {
	// Record metadata holds strings only, so marshalling cannot fail.
	encoded, _ := metadata.Marshal()
	data := make([]byte, 0, len(content)+1+len(encoded))
	data = append(data, content...)
	data = append(data, 0)
	data = append(data, encoded...)

	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
