package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"handbook-rag/internal/delivery/http/dto"
	"handbook-rag/internal/domain/entity"
	"handbook-rag/internal/usecase/document"
)

type KnowledgeHandler struct {
	kb *document.KnowledgeBase
}

func NewKnowledgeHandler(kb *document.KnowledgeBase) *KnowledgeHandler {
	return &KnowledgeHandler{kb: kb}
}

// Health never fails, it just reports state.
func (h *KnowledgeHandler) Health(c *fiber.Ctx) error {
	st := h.kb.Status()

	files := make([]string, 0, len(st.Documents))
	seedLoaded := false
	for _, doc := range st.Documents {
		files = append(files, doc.Filename)
		if doc.Origin == entity.OriginSeed {
			seedLoaded = true
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
		Status:                 "healthy",
		VectorstoreInitialized: st.Ready,
		QAChainInitialized:     st.Ready,
		InternalDocsLoaded:     seedLoaded,
		ProcessedFiles:         files,
	})
}

// SeedStatus lists the PDF files present in the seed directory without
// ingesting anything.
func (h *KnowledgeHandler) SeedStatus(c *fiber.Ctx) error {
	names, err := h.kb.SeedFiles()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: fmt.Sprintf("scan internal documents: %v", err),
		})
	}
	if names == nil {
		names = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(dto.SeedStatusResponse{
		TotalFiles:    len(names),
		PDFFilesFound: names,
	})
}

// InitializeDefault loads the seed document set for the first time.
func (h *KnowledgeHandler) InitializeDefault(c *fiber.Ctx) error {
	names, err := h.kb.SeedFiles()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: fmt.Sprintf("scan internal documents: %v", err),
		})
	}
	if len(names) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Detail: "No internal documents found. Please upload a PDF document.",
		})
	}

	result, err := h.kb.ReloadSeedDocuments(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: fmt.Sprintf("initialize internal documents: %v", err),
		})
	}
	if len(result.Loaded) == 0 {
		detail := "no internal document could be loaded"
		if len(result.Failures) > 0 {
			detail = fmt.Sprintf("no internal document could be loaded: %s: %s",
				result.Failures[0].Filename, result.Failures[0].Reason)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Detail: detail})
	}

	loaded := make([]string, len(result.Loaded))
	for i, doc := range result.Loaded {
		loaded[i] = doc.Filename
	}
	return c.Status(fiber.StatusOK).JSON(dto.InitializeResponse{
		Documents: loaded,
		Filename:  loaded[0],
	})
}

// Reload re-ingests the seed set. Partial success is reported with 207 and
// a per-file failure list; uploaded documents are untouched either way.
func (h *KnowledgeHandler) Reload(c *fiber.Ctx) error {
	result, err := h.kb.ReloadSeedDocuments(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: fmt.Sprintf("reload internal documents: %v", err),
		})
	}

	loaded := make([]string, 0, len(result.Loaded))
	for _, doc := range result.Loaded {
		loaded = append(loaded, doc.Filename)
	}
	resp := dto.ReloadResponse{
		DocumentsLoaded: loaded,
		TotalDocuments:  len(h.kb.Status().Documents),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, dto.ReloadFailure{Filename: f.Filename, Detail: f.Reason})
	}

	status := fiber.StatusOK
	if len(resp.Failures) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(resp)
}

// Upload ingests one user PDF into the knowledge base.
func (h *KnowledgeHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Detail: "Failed to get file from form"})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Detail: "Failed to open uploaded file"})
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Detail: "Failed to read uploaded file"})
	}

	doc, err := h.kb.Ingest(c.Context(), buf, file.Filename, entity.OriginUploaded)
	if err != nil {
		if errors.Is(err, entity.ErrNotPDF) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Detail: "Only PDF files are supported"})
		}
		if entity.IsTimeout(err) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
				Detail: fmt.Sprintf("Error processing PDF: %v", err),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: fmt.Sprintf("Error processing PDF: %v", err),
		})
	}

	st := h.kb.Status()
	all := make([]string, len(st.Documents))
	for i, d := range st.Documents {
		all[i] = d.Filename
	}
	return c.Status(fiber.StatusOK).JSON(dto.UploadResponse{
		Filename:       doc.Filename,
		AllDocuments:   all,
		TotalDocuments: len(all),
	})
}
