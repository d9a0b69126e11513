package document

import (
	"fmt"
	"strings"
	"unicode"

	"handbook-rag/internal/domain/entity"
)

type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given window size and overlap,
// both in characters. Overlap must be smaller than the size or the window
// could not advance.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// ChunkPages splits each page independently into overlapping windows, so a
// chunk never spans a page boundary and always carries an exact page
// number. The sequence index is global across the document. Output is
// deterministic for identical input and parameters.
func (c *Chunker) ChunkPages(documentID, sourceFile string, pages []entity.PageText) []entity.Chunk {
	var chunks []entity.Chunk
	seq := 0

	for _, page := range pages {
		text := []rune(cleanText(strings.TrimSpace(page.Text)))
		if len(text) == 0 {
			continue
		}

		step := c.chunkSize - c.chunkOverlap
		for start := 0; ; start += step {
			end := start + c.chunkSize
			if end > len(text) {
				end = len(text)
			}

			chunks = append(chunks, entity.Chunk{
				DocumentID: documentID,
				SourceFile: sourceFile,
				Page:       page.Page,
				Index:      seq,
				Text:       string(text[start:end]),
			})
			seq++

			if end == len(text) {
				break
			}
		}
	}

	return chunks
}

// cleanText collapses every run of whitespace into a single space.
func cleanText(text string) string {
	var result strings.Builder
	prevSpace := false

	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		} else {
			result.WriteRune(r)
			prevSpace = false
		}
	}

	return result.String()
}
