package model

// SearchConfig represents configuration for a retrieval query
type SearchConfig struct {
	Method RetrievalMethod `json:"method"`

	// Vector search parameters
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Metadata filtering, exact match on every pair (e.g. kind=Paragraph, article_no=4)
	Filter Fields `json:"filter,omitempty"`
	Kinds  []Kind `json:"kinds,omitempty"` // Restrict to these kinds, all if empty

	// Hierarchy expansion
	IncludeAncestors bool `json:"include_ancestors"`
	IncludeChildren  bool `json:"include_children"`
}

// DefaultSearchConfig returns a sensible default configuration
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Method:              RetrievalMethodVector,
		TopK:                5,
		SimilarityThreshold: 0.7,
		Filter:              nil,
		Kinds:               nil, // All kinds
		IncludeAncestors:    false,
		IncludeChildren:     true,
	}
}

// KindNames returns the configured kinds as strings, for use as SQL parameters.
func (c SearchConfig) KindNames() []string {
	names := make([]string, 0, len(c.Kinds))
	for _, kind := range c.Kinds {
		names = append(names, string(kind))
	}
	return names
}
