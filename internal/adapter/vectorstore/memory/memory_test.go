package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handbook-rag/internal/domain/entity"
)

func chunk(docID string, index int, text string) entity.Chunk {
	return entity.Chunk{DocumentID: docID, SourceFile: docID, Page: 1, Index: index, Text: text}
}

func TestSearchEmptyIndex(t *testing.T) {
	s := New()

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSelfMatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "one"), chunk("a.pdf", 1, "two"), chunk("a.pdf", 2, "three")},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "two", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearchOrderingAndTieBreak(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "exact"), chunk("a.pdf", 1, "tied-first"), chunk("a.pdf", 2, "tied-second")},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Text)
	// both orthogonal vectors score 0, earliest insertion wins
	assert.Equal(t, "tied-first", results[1].Text)
	assert.Equal(t, "tied-second", results[2].Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestSearchClampsK(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "only")},
		[][]float32{{1, 0, 0}},
	)
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = s.Search(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReplaceDocumentIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "v1-0"), chunk("a.pdf", 1, "v1-1"), chunk("a.pdf", 2, "v1-2")},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	require.NoError(t, err)

	err = s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "v2-0"), chunk("a.pdf", 1, "v2-1")},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	)
	require.NoError(t, err)

	total, err := s.TotalChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2-0", results[0].Text)
}

func TestRemoveDocumentOnlyTouchesThatDocument(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "from-a")}, [][]float32{{1, 0, 0}}))
	require.NoError(t, s.ReplaceDocument(ctx, "b.pdf",
		[]entity.Chunk{chunk("b.pdf", 0, "from-b")}, [][]float32{{0, 1, 0}}))

	require.NoError(t, s.RemoveDocument(ctx, "a.pdf"))

	total, err := s.TotalChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	results, err := s.Search(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "from-b", results[0].Text)
}

func TestDimensionMismatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.ReplaceDocument(ctx, "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "x")}, [][]float32{{1, 0, 0}}))

	err := s.ReplaceDocument(ctx, "b.pdf",
		[]entity.Chunk{chunk("b.pdf", 0, "y")}, [][]float32{{1, 0}})
	assert.Error(t, err)

	_, err = s.Search(ctx, []float32{1, 0}, 1)
	assert.Error(t, err)
}

func TestReplaceDocumentLengthMismatch(t *testing.T) {
	s := New()

	err := s.ReplaceDocument(context.Background(), "a.pdf",
		[]entity.Chunk{chunk("a.pdf", 0, "x"), chunk("a.pdf", 1, "y")},
		[][]float32{{1, 0, 0}})
	assert.Error(t, err)
}
