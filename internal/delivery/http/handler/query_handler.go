package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"handbook-rag/internal/delivery/http/dto"
	"handbook-rag/internal/domain/entity"
	"handbook-rag/internal/usecase/query"
)

type QueryHandler struct {
	pipeline *query.Pipeline
}

func NewQueryHandler(pipeline *query.Pipeline) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Detail: "Invalid request body"})
	}

	result, err := h.pipeline.Query(c.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrEmptyQuestion):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Detail: "Question must not be empty"})
		case errors.Is(err, entity.ErrNotReady):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Detail: "Please upload a PDF first to initialize the system",
			})
		case entity.IsTimeout(err):
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
				Detail: fmt.Sprintf("Query timed out: %v", err),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Detail: fmt.Sprintf("Error processing query: %v", err),
			})
		}
	}

	sources := make([]dto.SourceDocument, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = dto.SourceDocument{
			Content: src.Excerpt,
			Metadata: dto.SourceMetadata{
				Page:       dto.PageNumber(src.Page),
				SourceFile: src.SourceFile,
			},
		}
	}
	return c.Status(fiber.StatusOK).JSON(dto.QueryResponse{
		Answer:          result.Answer,
		SourceDocuments: sources,
	})
}
