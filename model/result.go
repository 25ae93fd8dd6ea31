package model

type RetrievalMethod string

const (
	RetrievalMethodVector       RetrievalMethod = "vector"
	RetrievalMethodMetadata     RetrievalMethod = "metadata"
	RetrievalMethodHierarchical RetrievalMethod = "hierarchical"
)

// RetrievalResult represents a document retrieved by a query
type RetrievalResult struct {
	Document        *Document       `json:"document"`
	Score           float64         `json:"score"`            // Combined score from ranking
	SimilarityScore float64         `json:"similarity_score"` // Cosine similarity score
	RetrievalMethod RetrievalMethod `json:"retrieval_method"`
	Ancestors       []*Document     `json:"ancestors,omitempty"` // Nearest first
	Children        []*Document     `json:"children,omitempty"`
}
