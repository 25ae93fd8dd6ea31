package pipeline

import (
	"fmt"

	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

// ChunkFunc is a function that splits text into chunks with their hierarchical paths
// The path should follow ltree format (e.g., "ch_1.art_2.par_1.chunk0")
type ChunkFunc func(text string, basePath string) ([]ChunkWithPath, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// ChunkWithPath represents a chunk with its hierarchical path
type ChunkWithPath struct {
	Content    string
	Path       string // ltree path
	StartPos   *int
	EndPos     *int
	ChunkIndex *int
	Metadata   map[string]interface{}
}

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SplitDocument splits a document into chunks without embeddings.
// Every chunk inherits the document metadata and is placed below the document path.
func SplitDocument(chunker ChunkFunc, doc *model.Document) ([]*model.Chunk, error) {
	if chunker == nil {
		return nil, helper.NewError("split document", fmt.Errorf("chunker is nil"))
	}

	parts, err := chunker(doc.Content, doc.Path())
	if err != nil {
		return nil, helper.NewError("split document", err)
	}

	chunks := make([]*model.Chunk, 0, len(parts))
	for _, part := range parts {
		metadata := make(model.Metadata, len(doc.Metadata)+len(part.Metadata))
		for key, value := range doc.Metadata {
			metadata[key] = value
		}
		for key, value := range part.Metadata {
			metadata[key] = value
		}

		chunks = append(chunks, &model.Chunk{
			DocumentID:  doc.ID,
			DocumentRID: doc.RID,
			Content:     part.Content,
			Path:        part.Path,
			StartPos:    part.StartPos,
			EndPos:      part.EndPos,
			ChunkIndex:  part.ChunkIndex,
			Metadata:    metadata,
		})
	}
	return chunks, nil
}

// EmbedDocuments generates the embedding of every document in place.
func (p *Pipeline) EmbedDocuments(docs []*model.Document) error {
	if p.Embedder == nil {
		return helper.NewError("embed documents", fmt.Errorf("embedder is nil"))
	}

	for _, doc := range docs {
		embedding, err := p.Embedder(doc.Content)
		if err != nil {
			return helper.NewError(fmt.Sprintf("embed document %s", doc.Path()), err)
		}
		doc.Embedding = embedding
	}
	return nil
}

// Process splits a document through the pipeline, returning chunks with embeddings
func (p *Pipeline) Process(doc *model.Document) ([]*model.Chunk, error) {
	if p.Embedder == nil {
		return nil, helper.NewError("process document", fmt.Errorf("embedder is nil"))
	}

	chunks, err := SplitDocument(p.Chunker, doc)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		embedding, err := p.Embedder(chunk.Content)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("embed chunk %s", chunk.Path), err)
		}
		chunk.Embedding = embedding
	}
	return chunks, nil
}
