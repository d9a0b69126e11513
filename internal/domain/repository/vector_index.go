package repository

import (
	"context"

	"handbook-rag/internal/domain/entity"
)

// VectorIndex stores chunk embeddings and supports k-nearest-neighbor
// search. Implementations must make ReplaceDocument atomic with respect to
// concurrent readers: a search observes either none or all of a document's
// chunks, never a partial set.
type VectorIndex interface {
	// ReplaceDocument removes any chunks previously stored for documentID
	// and inserts the given ones. chunks[i] is paired with vectors[i].
	ReplaceDocument(ctx context.Context, documentID string, chunks []entity.Chunk, vectors [][]float32) error

	// Search returns up to k chunks ordered by non-increasing similarity to
	// vector, ties broken by insertion order (earliest first). An empty
	// index yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error)

	// RemoveDocument deletes all chunks belonging to documentID.
	RemoveDocument(ctx context.Context, documentID string) error

	// TotalChunks reports the number of chunks currently indexed.
	TotalChunks(ctx context.Context) (int, error)
}
