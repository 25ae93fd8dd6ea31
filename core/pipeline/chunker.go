package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// newChunk builds a chunk at index idx. The path follows ltree format, e.g. "ch_1.art_2.chunk0".
func newChunk(content, basePath string, idx, startPos int) ChunkWithPath {
	endPos := startPos + len(content)
	return ChunkWithPath{
		Content:    content,
		Path:       fmt.Sprintf("%s.chunk%d", basePath, idx),
		StartPos:   &startPos,
		EndPos:     &endPos,
		ChunkIndex: &idx,
		Metadata:   make(map[string]interface{}),
	}
}

// SeparatorChunker creates a chunker that splits text at separator and merges the parts
// into chunks of at most chunkSize characters, repeating up to overlap characters of the
// previous chunk. With keepSeparator the separator stays at the start of the following part.
// A single part longer than chunkSize becomes its own chunk.
func SeparatorChunker(chunkSize int, overlap int, separator string, keepSeparator bool) ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		if chunkSize <= 0 {
			return nil, fmt.Errorf("chunk size must be positive")
		}
		if overlap < 0 || overlap > chunkSize {
			return nil, fmt.Errorf("chunk overlap must be between 0 and chunk size %d, got %d", chunkSize, overlap)
		}
		if separator == "" {
			return nil, fmt.Errorf("separator must not be empty")
		}

		parts := splitKeeping(text, separator, keepSeparator)
		joiner := separator
		if keepSeparator {
			joiner = ""
		}

		var chunks []ChunkWithPath
		searchFrom := 0
		emit := func(current []string) {
			content := strings.TrimSpace(strings.Join(current, joiner))
			if content == "" {
				return
			}
			start := searchFrom
			if i := strings.Index(text[searchFrom:], content); i >= 0 {
				start = searchFrom + i
				searchFrom = start + 1
			}
			chunks = append(chunks, newChunk(content, basePath, len(chunks), start))
		}

		joinerLen := utf8.RuneCountInString(joiner)
		var current []string
		total := 0
		for _, part := range parts {
			partLen := utf8.RuneCountInString(part)
			if total+partLen+sepLen(current, joinerLen) > chunkSize && len(current) > 0 {
				emit(current)
				// Drop parts from the front until the rest fits as overlap.
				for total > overlap || (total > 0 && total+partLen+sepLen(current, joinerLen) > chunkSize) {
					total -= utf8.RuneCountInString(current[0])
					if len(current) > 1 {
						total -= joinerLen
					}
					current = current[1:]
				}
			}
			current = append(current, part)
			total += partLen
			if len(current) > 1 {
				total += joinerLen
			}
		}
		if len(current) > 0 {
			emit(current)
		}

		if chunks == nil {
			return []ChunkWithPath{}, nil
		}
		return chunks, nil
	}
}

func sepLen(current []string, joinerLen int) int {
	if len(current) == 0 {
		return 0
	}
	return joinerLen
}

// splitKeeping splits text at separator and drops empty parts.
func splitKeeping(text, separator string, keepSeparator bool) []string {
	raw := strings.Split(text, separator)
	parts := make([]string, 0, len(raw))
	for i, part := range raw {
		if keepSeparator && i > 0 {
			part = separator + part
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// SentenceChunker creates a chunker that splits by sentences
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		if strings.TrimSpace(text) == "" {
			return []ChunkWithPath{}, nil
		}

		marked := strings.ReplaceAll(text, "! ", "!|")
		marked = strings.ReplaceAll(marked, "? ", "?|")
		marked = strings.ReplaceAll(marked, ". ", ".|")
		marked = strings.ReplaceAll(marked, "; ", ";|")

		var sentences []string
		for _, s := range strings.Split(marked, "|") {
			s = strings.TrimSpace(s)
			if s != "" {
				sentences = append(sentences, s)
			}
		}

		var chunks []ChunkWithPath
		pos := 0
		for start := 0; start < len(sentences); start += maxSentencesPerChunk {
			end := min(start+maxSentencesPerChunk, len(sentences))
			content := strings.Join(sentences[start:end], " ")
			chunk := newChunk(content, basePath, len(chunks), pos)
			chunks = append(chunks, chunk)
			pos = *chunk.EndPos + 1
		}

		return chunks, nil
	}
}
