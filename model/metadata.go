package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/siherrmann/lexgrapher/helper"
)

// Metadata represents JSONB metadata stored in PostgreSQL
type Metadata map[string]interface{}

// NewMetadata builds document metadata for a record: every scoping key, the kind and the source.
// The text is never part of the metadata.
func NewMetadata(r Record, source string) Metadata {
	fields := r.Fields()
	m := make(Metadata, len(fields)+2)
	for key, value := range fields {
		m[key] = value
	}
	m[FieldKind] = string(r.Kind())
	m[FieldSource] = source
	return m
}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return m.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	return m.Unmarshal(value)
}

// Marshal converts Metadata to JSON bytes
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal converts JSON bytes or Metadata to Metadata
func (m *Metadata) Unmarshal(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	if s, ok := value.(Metadata); ok {
		*m = Metadata(s)
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// String returns the value of key formatted as a string, or "" if it is missing.
func (m Metadata) String(key string) string {
	value, ok := m[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Kind returns the record kind stored in the metadata.
func (m Metadata) Kind() Kind {
	return Kind(m.String(FieldKind))
}

// Key rebuilds the composite record key from the metadata.
func (m Metadata) Key() Key {
	return Key{
		ChapterNo:   m.String(FieldChapterNo),
		ArticleNo:   m.String(FieldArticleNo),
		ParagraphNo: m.String(FieldParagraphNo),
		PointNo:     m.String(FieldPointNo),
		SubpointNo:  m.String(FieldSubpointNo),
	}
}

// Matches reports whether every filter pair is present with exactly that value.
func (m Metadata) Matches(filter Fields) bool {
	for key, want := range filter {
		value, ok := m[key]
		if !ok {
			return false
		}
		if s, isString := value.(string); !isString || s != want {
			return false
		}
	}
	return true
}
