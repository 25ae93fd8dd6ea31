package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSearchConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultSearchConfig()

		assert.Equal(t, RetrievalMethodVector, config.Method, "Default Method should be vector")
		assert.Equal(t, 5, config.TopK, "Default TopK should be 5")
		assert.Equal(t, 0.7, config.SimilarityThreshold, "Default SimilarityThreshold should be 0.7")
		assert.Nil(t, config.Filter, "Default Filter should be nil")
		assert.Nil(t, config.Kinds, "Default Kinds should be nil (all kinds)")
		assert.False(t, config.IncludeAncestors, "Default IncludeAncestors should be false")
		assert.True(t, config.IncludeChildren, "Default IncludeChildren should be true")
	})

	t.Run("Kind names", func(t *testing.T) {
		config := DefaultSearchConfig()
		assert.Empty(t, config.KindNames())

		config.Kinds = []Kind{KindParagraph, KindPoint}
		assert.Equal(t, []string{"Paragraph", "Point"}, config.KindNames())
	})
}
