package retrieval

import (
	"context"
	"fmt"

	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error)
}

// NewStrategy returns the strategy for a retrieval method.
func NewStrategy(engine *Engine, method model.RetrievalMethod) (Strategy, error) {
	switch method {
	case model.RetrievalMethodVector, "":
		return NewVectorStrategy(engine), nil
	case model.RetrievalMethodHierarchical:
		return NewHierarchicalStrategy(engine), nil
	case model.RetrievalMethodMetadata:
		return NewMetadataStrategy(engine), nil
	default:
		return nil, helper.NewError("strategy", fmt.Errorf("unknown retrieval method %q", method))
	}
}

// VectorStrategy performs pure vector similarity search
type VectorStrategy struct {
	engine *Engine
}

// NewVectorStrategy creates a new vector strategy
func NewVectorStrategy(engine *Engine) *VectorStrategy {
	return &VectorStrategy{engine: engine}
}

// Retrieve performs vector retrieval
func (s *VectorStrategy) Retrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	return s.engine.VectorRetrieve(ctx, embedding, config)
}

// HierarchicalStrategy searches paragraphs and expands them to their points
type HierarchicalStrategy struct {
	engine *Engine
}

// NewHierarchicalStrategy creates a new hierarchical strategy
func NewHierarchicalStrategy(engine *Engine) *HierarchicalStrategy {
	return &HierarchicalStrategy{engine: engine}
}

// Retrieve performs hierarchical retrieval
func (s *HierarchicalStrategy) Retrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	return s.engine.HierarchicalRetrieve(ctx, embedding, config)
}

// MetadataStrategy ignores the embedding and returns up to TopK documents matching the filter
type MetadataStrategy struct {
	engine *Engine
}

// NewMetadataStrategy creates a new metadata strategy
func NewMetadataStrategy(engine *Engine) *MetadataStrategy {
	return &MetadataStrategy{engine: engine}
}

// Retrieve performs metadata retrieval. Kinds of config are added to the filter when exactly one is set.
func (s *MetadataStrategy) Retrieve(ctx context.Context, embedding []float32, config model.SearchConfig) ([]*model.RetrievalResult, error) {
	filter := make(model.Fields, len(config.Filter)+1)
	for key, value := range config.Filter {
		filter[key] = value
	}
	if len(config.Kinds) == 1 {
		filter[model.FieldKind] = string(config.Kinds[0])
	}
	return s.engine.MetadataRetrieve(ctx, filter, config.TopK)
}
