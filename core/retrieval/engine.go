package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/lexgrapher/database"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

// Engine retrieves stored documents and expands them along the statute hierarchy.
type Engine struct {
	documents database.DocumentsDBHandlerFunctions
	chunks    database.ChunksDBHandlerFunctions
}

// NewEngine creates a new retrieval engine. chunks may be nil if no chunks are stored.
func NewEngine(documents database.DocumentsDBHandlerFunctions, chunks database.ChunksDBHandlerFunctions) *Engine {
	return &Engine{
		documents: documents,
		chunks:    chunks,
	}
}

// VectorRetrieve performs a similarity search over all documents matching the filter and kinds of config.
// Children and ancestors are attached as configured.
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	docs, err := e.documents.SelectDocumentsBySimilarity(ctx, embedding, config)
	if err != nil {
		return nil, helper.NewError("vector retrieve", err)
	}

	results := make([]*model.RetrievalResult, 0, len(docs))
	for _, doc := range docs {
		result := &model.RetrievalResult{
			Document:        doc,
			Score:           doc.Similarity,
			SimilarityScore: doc.Similarity,
			RetrievalMethod: model.RetrievalMethodVector,
		}

		if config.IncludeChildren {
			result.Children, err = e.Children(ctx, doc)
			if err != nil {
				return nil, err
			}
		}
		if config.IncludeAncestors {
			result.Ancestors, err = e.Ancestors(ctx, doc)
			if err != nil {
				return nil, err
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// HierarchicalRetrieve searches paragraph documents only and attaches the points of every
// paragraph found, matched by their scoping keys. Ancestors are attached if configured.
func (e *Engine) HierarchicalRetrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	paragraphConfig := config
	paragraphConfig.Kinds = []model.Kind{model.KindParagraph}

	paragraphs, err := e.documents.SelectDocumentsBySimilarity(ctx, embedding, paragraphConfig)
	if err != nil {
		return nil, helper.NewError("hierarchical retrieve", err)
	}

	results := make([]*model.RetrievalResult, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		points, err := e.documents.SelectDocumentsByMetadata(ctx, pointsFilter(paragraph), 0)
		if err != nil {
			return nil, helper.NewError("select points", err)
		}

		result := &model.RetrievalResult{
			Document:        paragraph,
			Score:           paragraph.Similarity,
			SimilarityScore: paragraph.Similarity,
			RetrievalMethod: model.RetrievalMethodHierarchical,
			Children:        points,
		}

		if config.IncludeAncestors {
			result.Ancestors, err = e.Ancestors(ctx, paragraph)
			if err != nil {
				return nil, err
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// MetadataRetrieve returns the documents matching every filter pair, in storage order.
func (e *Engine) MetadataRetrieve(ctx context.Context, filter model.Fields, limit int) ([]*model.RetrievalResult, error) {
	docs, err := e.documents.SelectDocumentsByMetadata(ctx, filter, limit)
	if err != nil {
		return nil, helper.NewError("metadata retrieve", err)
	}

	results := make([]*model.RetrievalResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, &model.RetrievalResult{
			Document:        doc,
			Score:           1,
			RetrievalMethod: model.RetrievalMethodMetadata,
		})
	}

	return results, nil
}

// ChunkRetrieve performs a similarity search over stored chunks.
func (e *Engine) ChunkRetrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.Chunk, error) {
	if e.chunks == nil {
		return nil, helper.NewError("chunk retrieve", fmt.Errorf("no chunk store configured"))
	}

	chunks, err := e.chunks.SelectChunksBySimilarity(ctx, embedding, config.TopK, config.SimilarityThreshold, nil)
	if err != nil {
		return nil, helper.NewError("chunk retrieve", err)
	}

	return chunks, nil
}

// Ancestors returns the documents enclosing doc within its source, nearest first.
func (e *Engine) Ancestors(ctx context.Context, doc *model.Document) ([]*model.Document, error) {
	ancestors, err := e.documents.SelectDocumentsByPathAncestor(ctx, doc.Path(), sourceFilter(doc))
	if err != nil {
		return nil, helper.NewError("select ancestors", err)
	}
	return ancestors, nil
}

// Children returns the documents directly below doc within its source.
// A point without a paragraph is a child of its article.
func (e *Engine) Children(ctx context.Context, doc *model.Document) ([]*model.Document, error) {
	descendants, err := e.documents.SelectDocumentsByPathDescendant(ctx, doc.Path(), sourceFilter(doc))
	if err != nil {
		return nil, helper.NewError("select children", err)
	}

	depth := pathDepth(doc.Path())
	children := []*model.Document{}
	for _, descendant := range descendants {
		if pathDepth(descendant.Path()) == depth+1 {
			children = append(children, descendant)
		}
	}
	return children, nil
}

func sourceFilter(doc *model.Document) model.Fields {
	return model.Fields{model.FieldSource: doc.Source()}
}

// pointsFilter matches the points of a paragraph document.
func pointsFilter(paragraph *model.Document) model.Fields {
	key := paragraph.Metadata.Key()
	return model.Fields{
		model.FieldKind:        string(model.KindPoint),
		model.FieldSource:      paragraph.Source(),
		model.FieldChapterNo:   key.ChapterNo,
		model.FieldArticleNo:   key.ArticleNo,
		model.FieldParagraphNo: key.ParagraphNo,
	}
}

func pathDepth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}
