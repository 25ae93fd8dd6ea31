package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/lexgrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsNewDocumentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewDocumentsDBHandler", func(t *testing.T) {
		documentsDbHandler, err := NewDocumentsDBHandler(database, testEmbeddingDim, true)
		assert.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
		require.NotNil(t, documentsDbHandler, "Expected NewDocumentsDBHandler to return a non-nil instance")
		require.NotNil(t, documentsDbHandler.db.Instance, "Expected NewDocumentsDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewDocumentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(nil, testEmbeddingDim, false)
		assert.Error(t, err, "Expected error when creating DocumentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})

	t.Run("Invalid call NewDocumentsDBHandler with zero dimension", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(database, 0, false)
		assert.Error(t, err, "Expected error for a zero embedding dimension")
	})
}

func TestDocumentsInsert(t *testing.T) {
	database := initDB(t)
	documentsDbHandler, _ := newTestHandlers(t, database)
	ctx := context.Background()
	source := "insert-" + uuid.NewString()

	t.Run("Insert document without embedding", func(t *testing.T) {
		doc := newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "1", Text: "Zakres ustawy"}, source, nil)

		err := documentsDbHandler.InsertDocument(ctx, doc)
		require.NoError(t, err, "Expected InsertDocument to not return an error")
		assert.NotZero(t, doc.ID, "Expected inserted document to have an ID")
		assert.Empty(t, doc.Embedding, "Expected no embedding")
		assert.WithinDuration(t, time.Now(), doc.CreatedAt, 5*time.Second, "Expected CreatedAt to be set")
		assert.Equal(t, "Article", doc.Metadata.String(model.FieldKind), "Expected kind to be stored in metadata")
		assert.Equal(t, source, doc.Source(), "Expected source to be stored in metadata")
	})

	t.Run("Insert document with embedding", func(t *testing.T) {
		doc := newTestDocument(&model.Paragraph{ChapterNo: "1", ArticleNo: "1", ParagraphNo: "1", Text: "Ustawa reguluje"}, source, []float32{0.1, 0.2, 0.3})

		err := documentsDbHandler.InsertDocument(ctx, doc)
		require.NoError(t, err, "Expected InsertDocument to not return an error")
		assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, doc.Embedding, 1e-6, "Expected embedding to round trip")
	})

	t.Run("Insert document with a known hash keeps the stored row", func(t *testing.T) {
		first := newTestDocument(&model.Chapter{ChapterNo: "2", Text: "Przepisy ogólne"}, source, nil)
		require.NoError(t, documentsDbHandler.InsertDocument(ctx, first))

		second := newTestDocument(&model.Chapter{ChapterNo: "2", Text: "Przepisy ogólne"}, source, []float32{1, 0, 0})
		second.Hash = first.Hash
		require.NoError(t, documentsDbHandler.InsertDocument(ctx, second))

		assert.Equal(t, first.ID, second.ID, "Expected the same row to be returned")
		assert.Equal(t, first.RID, second.RID, "Expected the stored rid to be kept")
		assert.InDeltaSlice(t, []float32{1, 0, 0}, second.Embedding, 1e-6, "Expected a missing embedding to be filled in")
	})

	t.Run("Insert documents in one transaction", func(t *testing.T) {
		docs := []*model.Document{
			newTestDocument(&model.Point{ChapterNo: "1", ArticleNo: "1", ParagraphNo: "1", PointNo: "1", Text: "pierwszy"}, source, nil),
			newTestDocument(&model.Point{ChapterNo: "1", ArticleNo: "1", ParagraphNo: "1", PointNo: "2", Text: "drugi"}, source, nil),
		}

		err := documentsDbHandler.InsertDocuments(ctx, docs)
		require.NoError(t, err, "Expected InsertDocuments to not return an error")
		for _, doc := range docs {
			assert.NotZero(t, doc.ID, "Expected every document to have an ID")
		}
	})
}

func TestDocumentsSelect(t *testing.T) {
	database := initDB(t)
	documentsDbHandler, _ := newTestHandlers(t, database)
	ctx := context.Background()
	source := "select-" + uuid.NewString()

	chapter := newTestDocument(&model.Chapter{ChapterNo: "1", Text: "Przepisy ogólne"}, source, []float32{0, 0, 1})
	article := newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "4", Text: "Definicje"}, source, []float32{0, 1, 0})
	paragraph := newTestDocument(&model.Paragraph{ChapterNo: "1", ArticleNo: "4", ParagraphNo: "1", Text: "Ilekroć w ustawie jest mowa o"}, source, []float32{1, 0, 0})
	point := newTestDocument(&model.Point{ChapterNo: "1", ArticleNo: "4", ParagraphNo: "1", PointNo: "1", Text: "organie"}, source, []float32{0.9, 0.1, 0})
	other := newTestDocument(&model.Paragraph{ChapterNo: "1", ArticleNo: "4", ParagraphNo: "1", Text: "Inny akt"}, "other-"+uuid.NewString(), []float32{1, 0, 0})
	require.NoError(t, documentsDbHandler.InsertDocuments(ctx, []*model.Document{chapter, article, paragraph, point, other}))

	sourceFilter := model.Fields{model.FieldSource: source}

	t.Run("Select document by rid", func(t *testing.T) {
		doc, err := documentsDbHandler.SelectDocument(ctx, article.RID)
		require.NoError(t, err, "Expected SelectDocument to not return an error")
		assert.Equal(t, article.ID, doc.ID, "Expected the article document")
		assert.Equal(t, "Definicje", doc.Content, "Expected the article title as content")
		assert.Equal(t, model.KindArticle, doc.Kind(), "Expected the article kind")
	})

	t.Run("Select unknown document fails", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocument(ctx, uuid.New())
		assert.Error(t, err, "Expected an error for an unknown rid")
	})

	t.Run("Select documents by metadata", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByMetadata(ctx, model.Fields{
			model.FieldKind:      string(model.KindParagraph),
			model.FieldArticleNo: "4",
			model.FieldSource:    source,
		}, 0)
		require.NoError(t, err, "Expected SelectDocumentsByMetadata to not return an error")
		require.Len(t, docs, 1, "Expected only the paragraph of the source")
		assert.Equal(t, paragraph.RID, docs[0].RID)
	})

	t.Run("Select documents by metadata respects the limit", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByMetadata(ctx, sourceFilter, 2)
		require.NoError(t, err)
		assert.Len(t, docs, 2, "Expected the limit to apply")
	})

	t.Run("Select documents by path ancestor returns nearest first", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByPathAncestor(ctx, point.Path(), sourceFilter)
		require.NoError(t, err, "Expected SelectDocumentsByPathAncestor to not return an error")
		require.Len(t, docs, 3, "Expected paragraph, article and chapter")
		assert.Equal(t, paragraph.RID, docs[0].RID)
		assert.Equal(t, article.RID, docs[1].RID)
		assert.Equal(t, chapter.RID, docs[2].RID)
	})

	t.Run("Select documents by path descendant returns outermost first", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByPathDescendant(ctx, chapter.Path(), sourceFilter)
		require.NoError(t, err, "Expected SelectDocumentsByPathDescendant to not return an error")
		require.Len(t, docs, 3, "Expected article, paragraph and point")
		assert.Equal(t, article.RID, docs[0].RID)
		assert.Equal(t, paragraph.RID, docs[1].RID)
		assert.Equal(t, point.RID, docs[2].RID)
	})

	t.Run("Select documents by similarity", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.Filter = sourceFilter

		docs, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, []float32{1, 0, 0}, config)
		require.NoError(t, err, "Expected SelectDocumentsBySimilarity to not return an error")
		require.Len(t, docs, 2, "Expected paragraph and point above the threshold")
		assert.Equal(t, paragraph.RID, docs[0].RID, "Expected the closest document first")
		assert.InDelta(t, 1.0, docs[0].Similarity, 1e-6)
		assert.GreaterOrEqual(t, docs[0].Similarity, docs[1].Similarity, "Expected descending similarity")
	})

	t.Run("Select documents by similarity restricted to kinds", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.Filter = sourceFilter
		config.Kinds = []model.Kind{model.KindPoint}

		docs, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, []float32{1, 0, 0}, config)
		require.NoError(t, err)
		require.Len(t, docs, 1, "Expected only the point")
		assert.Equal(t, point.RID, docs[0].RID)
	})

	t.Run("Select documents by similarity without embedding fails", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, nil, model.DefaultSearchConfig())
		assert.Error(t, err, "Expected an error for an empty embedding")
	})
}

func TestDocumentsUpdateAndDelete(t *testing.T) {
	database := initDB(t)
	documentsDbHandler, chunksDbHandler := newTestHandlers(t, database)
	ctx := context.Background()
	source := "delete-" + uuid.NewString()

	doc := newTestDocument(&model.Article{ChapterNo: "3", ArticleNo: "10", Text: "Kary"}, source, nil)
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))

	t.Run("Update document embedding", func(t *testing.T) {
		doc.Embedding = []float32{0.5, 0.5, 0}
		err := documentsDbHandler.UpdateDocumentEmbedding(ctx, doc)
		require.NoError(t, err, "Expected UpdateDocumentEmbedding to not return an error")

		stored, err := documentsDbHandler.SelectDocument(ctx, doc.RID)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0.5, 0.5, 0}, stored.Embedding, 1e-6, "Expected the new embedding to be stored")
	})

	t.Run("Delete documents by source cascades to chunks", func(t *testing.T) {
		chunk := &model.Chunk{DocumentID: doc.ID, Content: "Kary", Path: doc.Path() + ".chunk0"}
		require.NoError(t, chunksDbHandler.InsertChunk(ctx, chunk))

		deleted, err := documentsDbHandler.DeleteDocumentsBySource(ctx, source)
		require.NoError(t, err, "Expected DeleteDocumentsBySource to not return an error")
		assert.Equal(t, int64(1), deleted, "Expected one deleted document")

		_, err = chunksDbHandler.SelectChunk(ctx, chunk.ID)
		assert.Error(t, err, "Expected the chunk to be deleted with its document")
	})

	t.Run("Delete documents of an unknown source deletes nothing", func(t *testing.T) {
		deleted, err := documentsDbHandler.DeleteDocumentsBySource(ctx, "unknown-"+uuid.NewString())
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestDocumentsReplaceBySource(t *testing.T) {
	database := initDB(t)
	documentsDbHandler, chunksDbHandler := newTestHandlers(t, database)
	ctx := context.Background()
	source := "replace-" + uuid.NewString()
	bySource := model.Fields{model.FieldSource: source}

	old := newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "1", Text: "Stary tytuł"}, source, nil)
	require.NoError(t, documentsDbHandler.InsertDocuments(ctx, []*model.Document{
		old,
		newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "2", Text: "Drugi"}, source, nil),
	}))
	chunk := &model.Chunk{DocumentID: old.ID, Content: "Stary", Path: old.Path() + ".chunk0"}
	require.NoError(t, chunksDbHandler.InsertChunk(ctx, chunk))

	t.Run("Failed insert keeps the stored documents", func(t *testing.T) {
		docs := []*model.Document{
			newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "1", Text: "Nowy"}, source, nil),
			newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "3", Text: "Zły wymiar"}, source, []float32{1, 0}),
		}

		_, err := documentsDbHandler.ReplaceDocumentsBySource(ctx, source, docs)
		require.Error(t, err, "Expected an embedding of the wrong dimension to fail")

		stored, err := documentsDbHandler.SelectDocumentsByMetadata(ctx, bySource, 0)
		require.NoError(t, err)
		assert.Len(t, stored, 2, "Expected the previous documents to be kept")

		_, err = chunksDbHandler.SelectChunk(ctx, chunk.ID)
		assert.NoError(t, err, "Expected the chunk of a kept document to be kept")
	})

	t.Run("Replace deletes the old documents and stores the new ones", func(t *testing.T) {
		docs := []*model.Document{
			newTestDocument(&model.Article{ChapterNo: "1", ArticleNo: "1", Text: "Nowy tytuł"}, source, nil),
		}

		deleted, err := documentsDbHandler.ReplaceDocumentsBySource(ctx, source, docs)
		require.NoError(t, err, "Expected ReplaceDocumentsBySource to not return an error")
		assert.Equal(t, int64(2), deleted, "Expected both old documents to be deleted")
		assert.NotZero(t, docs[0].ID, "Expected the new document to get an id")

		stored, err := documentsDbHandler.SelectDocumentsByMetadata(ctx, bySource, 0)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Nowy tytuł", stored[0].Content)
	})
}
