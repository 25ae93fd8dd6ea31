package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is the retrieval unit built from one record: its text plus its scoping metadata.
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Hash      string    `json:"hash,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}

// Kind returns the kind of the record the document was built from.
func (d *Document) Kind() Kind {
	return d.Metadata.Kind()
}

// Source returns the originating file label.
func (d *Document) Source() string {
	return d.Metadata.String(FieldSource)
}

// Path returns the ltree path of the record the document was built from.
func (d *Document) Path() string {
	return d.Metadata.Key().Path()
}
