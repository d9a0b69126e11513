package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"handbook-rag/internal/domain/entity"
	"handbook-rag/internal/domain/repository"
)

// Store is a pgvector-backed vector index. It holds the process's chunks in
// the kb_chunks table; cosine distance drives search ordering.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ repository.VectorIndex = (*Store)(nil)

// EnsureSchema creates the pgvector extension and the chunk table. The seq
// column preserves insertion order for deterministic tie-breaking.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS kb_chunks (
			id          uuid PRIMARY KEY,
			seq         bigserial,
			document_id text NOT NULL,
			source_file text NOT NULL,
			page        int NOT NULL,
			chunk_index int NOT NULL,
			content     text NOT NULL,
			embedding   vector NOT NULL,
			created_at  timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS kb_chunks_document_id_idx ON kb_chunks (document_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &entity.IndexError{Err: err}
		}
	}
	return nil
}

// ReplaceDocument deletes the document's previous chunks and inserts the
// new ones inside one transaction.
func (s *Store) ReplaceDocument(ctx context.Context, documentID string, chunks []entity.Chunk, vectors [][]float32) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &entity.IndexError{Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kb_chunks WHERE document_id = $1`, documentID); err != nil {
		return &entity.IndexError{Err: err}
	}

	query := `
		INSERT INTO kb_chunks (id, document_id, source_file, page, chunk_index, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	for i := range chunks {
		_, err := tx.ExecContext(ctx, query,
			uuid.New().String(),
			documentID,
			chunks[i].SourceFile,
			chunks[i].Page,
			chunks[i].Index,
			chunks[i].Text,
			pgvector.NewVector(vectors[i]),
			now,
		)
		if err != nil {
			return &entity.IndexError{Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &entity.IndexError{Err: err}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	query := `
		SELECT document_id, source_file, page, chunk_index, content,
		       1 - (embedding <=> $1) AS score
		FROM kb_chunks
		ORDER BY embedding <=> $1, seq ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, &entity.IndexError{Err: err}
	}
	defer rows.Close()

	var results []entity.ScoredChunk
	for rows.Next() {
		var sc entity.ScoredChunk
		err := rows.Scan(
			&sc.DocumentID,
			&sc.SourceFile,
			&sc.Page,
			&sc.Index,
			&sc.Text,
			&sc.Score,
		)
		if err != nil {
			return nil, &entity.IndexError{Err: err}
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.IndexError{Err: err}
	}
	return results, nil
}

func (s *Store) RemoveDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kb_chunks WHERE document_id = $1`, documentID); err != nil {
		return &entity.IndexError{Err: err}
	}
	return nil
}

func (s *Store) TotalChunks(ctx context.Context) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM kb_chunks`); err != nil {
		return 0, &entity.IndexError{Err: err}
	}
	return total, nil
}
