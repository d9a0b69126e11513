package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"handbook-rag/internal/adapter/openai"
	"handbook-rag/internal/adapter/vectorstore/memory"
	pgstore "handbook-rag/internal/adapter/vectorstore/postgres"
	"handbook-rag/internal/delivery/http/handler"
	"handbook-rag/internal/domain/repository"
	"handbook-rag/internal/usecase/document"
	"handbook-rag/internal/usecase/query"
	"handbook-rag/pkg/config"
	"handbook-rag/pkg/database"
	"handbook-rag/pkg/logger"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)

	// vector index backend
	var index repository.VectorIndex
	switch cfg.VectorBackend {
	case "postgres":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		store := pgstore.New(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("failed to prepare vector schema: %v", err)
		}
		index = store
		appLog.Info("using postgres vector index")
	default:
		index = memory.New()
		appLog.Info("using in-memory vector index")
	}

	// openai clients
	embeddingClient := openai.NewEmbeddingClient(cfg.OpenAIKey, cfg.OpenAIEmbeddingModel)
	chatClient := openai.NewChatClient(cfg.OpenAIKey, cfg.OpenAIChatModel, cfg.MaxContextChars)

	chunker, err := document.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunker config: %v", err)
	}

	// knowledge base + query pipeline
	kb := document.NewKnowledgeBase(
		index,
		embeddingClient,
		document.NewPDFExtractor(),
		chunker,
		cfg.SeedDocsDir,
		cfg.EmbedTimeout,
		appLog,
	)
	pipeline := query.NewPipeline(
		kb,
		embeddingClient,
		chatClient,
		cfg.TopKResults,
		cfg.ExcerptMaxChars,
		cfg.EmbedTimeout,
		cfg.GenerateTimeout,
		appLog,
	)

	// handlers
	kbHandler := handler.NewKnowledgeHandler(kb)
	queryHandler := handler.NewQueryHandler(pipeline)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // handbook PDFs are large
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Handbook RAG Chatbot API", "status": "running"})
	})
	app.Get("/health", kbHandler.Health)
	app.Get("/internal-documents-status", kbHandler.SeedStatus)
	app.Post("/initialize-default", kbHandler.InitializeDefault)
	app.Post("/reload-internal-documents", kbHandler.Reload)
	app.Post("/upload-pdf", kbHandler.Upload)
	app.Post("/query", queryHandler.Query)

	appLog.Info("server starting", "port", cfg.Port, "seed_dir", cfg.SeedDocsDir)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
