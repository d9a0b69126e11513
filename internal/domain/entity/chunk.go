package entity

// PageText is one page of extracted text, in document order.
type PageText struct {
	Page int
	Text string
}

// Chunk is a bounded span of extracted text, the unit of retrieval.
// Immutable once created.
type Chunk struct {
	DocumentID string `json:"documentId"`
	SourceFile string `json:"sourceFile"`
	Page       int    `json:"page"` // 1-indexed, 0 when unknown
	Index      int    `json:"index"`
	Text       string `json:"text"`
}

// ScoredChunk is a search hit. Score is cosine similarity, higher is better.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// SourceCitation is the fixed-shape provenance record returned with an
// answer. All fields are always present; Page is 0 when unknown.
type SourceCitation struct {
	Excerpt    string `json:"excerpt"`
	Page       int    `json:"page"`
	SourceFile string `json:"sourceFile"`
}

type QueryResult struct {
	Answer  string           `json:"answer"`
	Sources []SourceCitation `json:"sources"`
}
