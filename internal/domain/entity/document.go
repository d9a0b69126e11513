package entity

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentOrigin string

const (
	OriginSeed     DocumentOrigin = "seed"
	OriginUploaded DocumentOrigin = "uploaded"
)

// Document is one ingested source file. It is registered only after the
// whole ingestion pipeline succeeded for the file.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	Origin      DocumentOrigin `json:"origin"`
	IngestedAt  time.Time      `json:"ingestedAt"`
	TotalChunks int            `json:"totalChunks"`
}

// DocumentID derives the stable identifier for a file. Re-uploading a file
// with the same name yields the same ID, so ingestion replaces the previous
// version instead of duplicating it.
func DocumentID(filename string) string {
	return strings.ToLower(filepath.Base(filename))
}

// KBStatus is the snapshot returned by the knowledge base status query.
type KBStatus struct {
	Ready       bool       `json:"ready"`
	Documents   []Document `json:"documents"`
	TotalChunks int        `json:"totalChunks"`
}

// ReloadResult reports the outcome of re-ingesting the seed document set.
// Unlike a single ingest, a reload is allowed to partially succeed.
type ReloadResult struct {
	Loaded   []Document      `json:"loaded"`
	Failures []ReloadFailure `json:"failures"`
}

type ReloadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}
