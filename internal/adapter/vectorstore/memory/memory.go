package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"handbook-rag/internal/domain/entity"
	"handbook-rag/internal/domain/repository"
)

type indexEntry struct {
	chunk  entity.Chunk
	vector []float32
	seq    uint64
}

// Store is an in-process vector index using brute-force cosine similarity.
// The vector dimension is fixed by the first inserted document.
type Store struct {
	mu        sync.RWMutex
	dimension int
	nextSeq   uint64
	entries   []indexEntry
}

func New() *Store { return &Store{} }

var _ repository.VectorIndex = (*Store)(nil)

// ReplaceDocument swaps the document's chunks in one critical section, so
// readers see either the old or the new set.
func (s *Store) ReplaceDocument(ctx context.Context, documentID string, chunks []entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return &entity.IndexError{Err: fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range vectors {
		if s.dimension == 0 && len(s.entries) == 0 {
			s.dimension = len(v)
		}
		if len(v) != s.dimension {
			return &entity.IndexError{Err: fmt.Errorf("vector dimension mismatch: got %d, index uses %d", len(v), s.dimension)}
		}
	}

	s.removeLocked(documentID)
	for i := range chunks {
		s.entries = append(s.entries, indexEntry{
			chunk:  chunks[i],
			vector: vectors[i],
			seq:    s.nextSeq,
		})
		s.nextSeq++
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, &entity.IndexError{Err: fmt.Errorf("query vector dimension mismatch: got %d, index uses %d", len(vector), s.dimension)}
	}

	type hit struct {
		entity.ScoredChunk
		seq uint64
	}
	hits := make([]hit, len(s.entries))
	for i, e := range s.entries {
		hits[i] = hit{
			ScoredChunk: entity.ScoredChunk{Chunk: e.chunk, Score: cosine(vector, e.vector)},
			seq:         e.seq,
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].seq < hits[j].seq
	})

	if k > len(hits) {
		k = len(hits)
	}
	results := make([]entity.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = hits[i].ScoredChunk
	}
	return results, nil
}

func (s *Store) RemoveDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(documentID)
	return nil
}

func (s *Store) TotalChunks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Store) removeLocked(documentID string) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.chunk.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
