package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"handbook-rag/internal/domain/entity"
)

// EmbeddingService embeds the question text.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationService produces the answer conditioned on retrieved chunks,
// given in retrieval-rank order.
type GenerationService interface {
	GenerateAnswer(ctx context.Context, question string, chunks []entity.Chunk) (string, error)
}

// KnowledgeReader is the read-only view of the knowledge base the pipeline
// needs. Queries never mutate the knowledge base.
type KnowledgeReader interface {
	Status() entity.KBStatus
	Search(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error)
}

type Pipeline struct {
	kb              KnowledgeReader
	embedder        EmbeddingService
	generator       GenerationService
	topK            int
	excerptMax      int
	embedTimeout    time.Duration
	generateTimeout time.Duration
	log             *slog.Logger
}

func NewPipeline(
	kb KnowledgeReader,
	embedder EmbeddingService,
	generator GenerationService,
	topK int,
	excerptMax int,
	embedTimeout time.Duration,
	generateTimeout time.Duration,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		kb:              kb,
		embedder:        embedder,
		generator:       generator,
		topK:            topK,
		excerptMax:      excerptMax,
		embedTimeout:    embedTimeout,
		generateTimeout: generateTimeout,
		log:             log,
	}
}

// Query answers a question: embed -> retrieve top-k -> generate -> cite.
// Fails with entity.ErrNotReady before any document has been ingested.
func (p *Pipeline) Query(ctx context.Context, question string) (*entity.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, entity.ErrEmptyQuestion
	}
	if !p.kb.Status().Ready {
		return nil, entity.ErrNotReady
	}

	start := time.Now()

	ectx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()
	vector, err := p.embedder.Embed(ectx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := p.kb.Search(ctx, vector, p.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	chunks := make([]entity.Chunk, len(hits))
	for i, hit := range hits {
		chunks[i] = hit.Chunk
	}

	gctx, cancel := context.WithTimeout(ctx, p.generateTimeout)
	defer cancel()
	answer, err := p.generator.GenerateAnswer(gctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]entity.SourceCitation, len(chunks))
	for i, chunk := range chunks {
		sources[i] = entity.SourceCitation{
			Excerpt:    p.excerpt(chunk.Text),
			Page:       chunk.Page,
			SourceFile: chunk.SourceFile,
		}
	}

	p.log.Info("query answered", "retrieved", len(hits), "took", time.Since(start))
	return &entity.QueryResult{Answer: answer, Sources: sources}, nil
}

// excerpt bounds a citation preview, marking truncation with an ellipsis.
func (p *Pipeline) excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= p.excerptMax {
		return text
	}
	return string(runes[:p.excerptMax]) + "..."
}
