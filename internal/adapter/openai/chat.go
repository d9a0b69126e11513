package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"handbook-rag/internal/domain/entity"
)

const systemPrompt = `You are an assistant answering questions about regulatory handbook documents.

Instructions:
1. Answer ONLY from the context passages provided
2. If the information is not in the context, say you could not find it in the documents
3. Keep answers clear, concise and well structured
4. Mention the source file and page when it helps the reader verify the answer`

type ChatClient struct {
	client          *openai.Client
	model           string
	temperature     float32
	maxContextChars int
}

// NewChatClient creates the answer-generation client. maxContextChars
// bounds the concatenated context; retrieved chunks past the budget are
// dropped lowest-rank first.
func NewChatClient(apiKey, model string, maxContextChars int) *ChatClient {
	return &ChatClient{
		client:          openai.NewClient(apiKey),
		model:           model,
		temperature:     0.3,
		maxContextChars: maxContextChars,
	}
}

// GenerateAnswer produces an answer to question conditioned on the context
// chunks, which must be given in retrieval-rank order.
func (c *ChatClient) GenerateAnswer(ctx context.Context, question string, chunks []entity.Chunk) (string, error) {
	userPrompt := fmt.Sprintf(`Context from the documents:
%s

Question: %s

Answer:`, c.buildContext(chunks), question)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", &entity.GenerationError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &entity.GenerationError{Err: fmt.Errorf("no choices in completion response")}
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *ChatClient) buildContext(chunks []entity.Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		page := "page unknown"
		if chunk.Page > 0 {
			page = fmt.Sprintf("page %d", chunk.Page)
		}
		block := fmt.Sprintf("[Source %d: %s, %s]\n%s\n\n", i+1, chunk.SourceFile, page, chunk.Text)
		if c.maxContextChars > 0 && b.Len()+len(block) > c.maxContextChars {
			break
		}
		b.WriteString(block)
	}
	return b.String()
}
