package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"handbook-rag/internal/domain/entity"
	"handbook-rag/internal/domain/repository"
)

// EmbeddingService maps text to fixed-dimension vectors.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase owns the vector index and the registry of ingested
// documents. It is the only component that mutates either. Mutations are
// serialized; reads observe pre- or post-state of a mutation, never an
// intermediate one.
type KnowledgeBase struct {
	index        repository.VectorIndex
	embedder     EmbeddingService
	extractor    Extractor
	chunker      *Chunker
	seedDir      string
	embedTimeout time.Duration
	log          *slog.Logger

	// mu serializes ingest/reload/remove against each other. Extraction,
	// chunking and embedding happen before it is taken, so the critical
	// section is just the index publish plus the registry update.
	mu sync.Mutex

	regMu sync.RWMutex
	docs  map[string]entity.Document
	order []string // document IDs in first-ingestion order
}

func NewKnowledgeBase(
	index repository.VectorIndex,
	embedder EmbeddingService,
	extractor Extractor,
	chunker *Chunker,
	seedDir string,
	embedTimeout time.Duration,
	log *slog.Logger,
) *KnowledgeBase {
	return &KnowledgeBase{
		index:        index,
		embedder:     embedder,
		extractor:    extractor,
		chunker:      chunker,
		seedDir:      seedDir,
		embedTimeout: embedTimeout,
		log:          log,
		docs:         make(map[string]entity.Document),
	}
}

// Ingest runs extract -> chunk -> embed -> index publish as one logical
// unit. On any stage failure nothing from the file is registered or
// indexed and the error names the failing stage. Ingesting a filename that
// is already registered replaces its previous chunks.
func (kb *KnowledgeBase) Ingest(ctx context.Context, data []byte, filename string, origin entity.DocumentOrigin) (*entity.Document, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, entity.ErrNotPDF
	}
	docID := entity.DocumentID(filename)

	pages, err := kb.extractor.ExtractPages(data)
	if err != nil {
		return nil, &entity.IngestionError{Filename: filename, Stage: entity.StageExtract, Err: err}
	}

	chunks := kb.chunker.ChunkPages(docID, filename, pages)
	if len(chunks) == 0 {
		return nil, &entity.IngestionError{Filename: filename, Stage: entity.StageChunk, Err: fmt.Errorf("no chunks produced")}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	ectx, cancel := context.WithTimeout(ctx, kb.embedTimeout)
	defer cancel()
	vectors, err := kb.embedder.EmbedBatch(ectx, texts)
	if err != nil {
		return nil, &entity.IngestionError{Filename: filename, Stage: entity.StageEmbed, Err: err}
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if err := kb.index.ReplaceDocument(ctx, docID, chunks, vectors); err != nil {
		return nil, &entity.IngestionError{Filename: filename, Stage: entity.StageIndex, Err: err}
	}

	doc := entity.Document{
		ID:          docID,
		Filename:    filename,
		Origin:      origin,
		IngestedAt:  time.Now(),
		TotalChunks: len(chunks),
	}
	kb.register(doc)

	kb.log.Info("document ingested",
		"document", docID, "origin", string(origin), "pages", len(pages), "chunks", len(chunks))
	return &doc, nil
}

// ReloadSeedDocuments re-ingests every PDF in the seed directory,
// replacing previously loaded seed documents. One bad seed file does not
// block the others; failures are reported per file. Uploaded documents are
// untouched. Seed documents that disappeared from disk are dropped.
func (kb *KnowledgeBase) ReloadSeedDocuments(ctx context.Context) (*entity.ReloadResult, error) {
	names, err := kb.SeedFiles()
	if err != nil {
		return nil, err
	}

	result := &entity.ReloadResult{}
	onDisk := make(map[string]bool, len(names))
	for _, name := range names {
		onDisk[entity.DocumentID(name)] = true

		data, err := os.ReadFile(filepath.Join(kb.seedDir, name))
		if err != nil {
			result.Failures = append(result.Failures, entity.ReloadFailure{
				Filename: name,
				Reason:   fmt.Sprintf("read seed file: %v", err),
			})
			continue
		}

		doc, err := kb.Ingest(ctx, data, name, entity.OriginSeed)
		if err != nil {
			kb.log.Warn("seed document failed to load", "file", name, "error", err)
			result.Failures = append(result.Failures, entity.ReloadFailure{
				Filename: name,
				Reason:   err.Error(),
			})
			continue
		}
		result.Loaded = append(result.Loaded, *doc)
	}

	// drop seed documents whose files are gone
	for _, doc := range kb.Status().Documents {
		if doc.Origin == entity.OriginSeed && !onDisk[doc.ID] {
			if err := kb.RemoveDocument(ctx, doc.ID); err != nil {
				result.Failures = append(result.Failures, entity.ReloadFailure{
					Filename: doc.Filename,
					Reason:   fmt.Sprintf("remove stale seed document: %v", err),
				})
			}
		}
	}

	return result, nil
}

// SeedFiles lists the PDF filenames currently present in the seed
// directory, sorted. A missing directory is reported as empty, not as an
// error, since seed documents are optional.
func (kb *KnowledgeBase) SeedFiles() ([]string, error) {
	files, err := os.ReadDir(kb.seedDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan seed directory %q: %w", kb.seedDir, err)
	}

	var names []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name()), ".pdf") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RemoveDocument deletes a document's chunks and registry entry.
func (kb *KnowledgeBase) RemoveDocument(ctx context.Context, documentID string) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if err := kb.index.RemoveDocument(ctx, documentID); err != nil {
		return err
	}
	kb.unregister(documentID)
	return nil
}

// Status reports whether the knowledge base can serve queries, plus the
// registered documents in ingestion order and the total chunk count.
func (kb *KnowledgeBase) Status() entity.KBStatus {
	kb.regMu.RLock()
	defer kb.regMu.RUnlock()

	st := entity.KBStatus{Documents: make([]entity.Document, 0, len(kb.order))}
	for _, id := range kb.order {
		doc := kb.docs[id]
		st.Documents = append(st.Documents, doc)
		st.TotalChunks += doc.TotalChunks
	}
	st.Ready = len(st.Documents) > 0
	return st
}

// Search is the read-only retrieval entry point for the query pipeline.
func (kb *KnowledgeBase) Search(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	return kb.index.Search(ctx, vector, k)
}

func (kb *KnowledgeBase) register(doc entity.Document) {
	kb.regMu.Lock()
	defer kb.regMu.Unlock()
	if _, exists := kb.docs[doc.ID]; !exists {
		kb.order = append(kb.order, doc.ID)
	}
	kb.docs[doc.ID] = doc
}

func (kb *KnowledgeBase) unregister(documentID string) {
	kb.regMu.Lock()
	defer kb.regMu.Unlock()
	if _, exists := kb.docs[documentID]; !exists {
		return
	}
	delete(kb.docs, documentID)
	for i, id := range kb.order {
		if id == documentID {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
}
