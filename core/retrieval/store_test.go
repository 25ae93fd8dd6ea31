package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/lexgrapher/database"
	"github.com/siherrmann/lexgrapher/model"
)

// memoryStore is an in-memory document store for engine tests.
type memoryStore struct {
	database.DocumentsDBHandlerFunctions
	docs []*model.Document
	err  error
}

func (s *memoryStore) add(record model.Record, source string, embedding []float32) *model.Document {
	doc := &model.Document{
		ID:        int64(len(s.docs) + 1),
		RID:       uuid.New(),
		Content:   record.Content(),
		Metadata:  model.NewMetadata(record, source),
		Embedding: embedding,
	}
	s.docs = append(s.docs, doc)
	return doc
}

func (s *memoryStore) SelectDocumentsByMetadata(ctx context.Context, filter model.Fields, limit int) ([]*model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []*model.Document{}
	for _, doc := range s.docs {
		if doc.Metadata.Matches(filter) {
			result = append(result, doc)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *memoryStore) SelectDocumentsByPathAncestor(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []*model.Document{}
	for _, doc := range s.docs {
		if doc.Metadata.Matches(filter) && doc.Path() != path && strings.HasPrefix(path, doc.Path()+".") {
			result = append(result, doc)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return len(result[i].Path()) > len(result[j].Path())
	})
	return result, nil
}

func (s *memoryStore) SelectDocumentsByPathDescendant(ctx context.Context, path string, filter model.Fields) ([]*model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []*model.Document{}
	for _, doc := range s.docs {
		if doc.Metadata.Matches(filter) && strings.HasPrefix(doc.Path(), path+".") {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (s *memoryStore) SelectDocumentsBySimilarity(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(embedding) == 0 {
		return nil, errors.New("embedding is empty")
	}

	kinds := map[string]bool{}
	for _, kind := range config.KindNames() {
		kinds[kind] = true
	}

	result := []*model.Document{}
	for _, doc := range s.docs {
		if len(doc.Embedding) == 0 || !doc.Metadata.Matches(config.Filter) {
			continue
		}
		if len(kinds) > 0 && !kinds[string(doc.Kind())] {
			continue
		}
		similarity := cosine(embedding, doc.Embedding)
		if similarity < config.SimilarityThreshold {
			continue
		}
		found := *doc
		found.Similarity = similarity
		result = append(result, &found)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Similarity > result[j].Similarity
	})
	if len(result) > config.TopK {
		result = result[:config.TopK]
	}
	return result, nil
}

// chunkStore returns its chunks for every similarity search.
type chunkStore struct {
	database.ChunksDBHandlerFunctions
	chunks []*model.Chunk
	limit  int
}

func (s *chunkStore) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64, documentRIDs []uuid.UUID) ([]*model.Chunk, error) {
	s.limit = limit
	return s.chunks, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
