package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"handbook-rag/internal/domain/entity"
)

type EmbeddingClient struct {
	client *openai.Client
	model  string
}

// NewEmbeddingClient creates a new OpenAI embedding client. For a fixed
// model the produced vectors are deterministic per input text, which the
// retrieval layer relies on.
func NewEmbeddingClient(apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one request. The returned slice is in
// input order and every vector has the model's fixed dimension.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, &entity.EmbeddingError{Err: err}
	}

	if len(resp.Data) != len(texts) {
		return nil, &entity.EmbeddingError{
			Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}
