package entity

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when a query arrives before any document has
	// been ingested.
	ErrNotReady = errors.New("knowledge base is not ready: no documents ingested")

	// ErrNotPDF is returned by the file-type gate before any processing.
	ErrNotPDF = errors.New("only PDF files are supported")

	// ErrEmptyQuestion is returned for blank query input.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// Ingestion stage names, used in IngestionError and logs.
const (
	StageExtract = "extract"
	StageChunk   = "chunk"
	StageEmbed   = "embed"
	StageIndex   = "index"
)

// ExtractionError means the input bytes were not a usable PDF.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("pdf extraction failed: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding service call failed.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError means a vector index operation failed.
type IndexError struct {
	Err error
}

func (e *IndexError) Error() string { return fmt.Sprintf("vector index operation failed: %v", e.Err) }
func (e *IndexError) Unwrap() error { return e.Err }

// GenerationError means the answer model call failed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("answer generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// IngestionError wraps a stage failure during ingestion. When it is
// returned, nothing from the file has been added to the knowledge base.
type IngestionError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion of %q failed at stage %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// IsTimeout reports whether err was caused by an external call exceeding
// its budget.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
