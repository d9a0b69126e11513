package dto

import (
	"encoding/json"
	"strconv"
)

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents"`
}

type SourceDocument struct {
	Content  string         `json:"content"`
	Metadata SourceMetadata `json:"metadata"`
}

type SourceMetadata struct {
	Page       PageNumber `json:"page"`
	SourceFile string     `json:"source_file"`
}

// PageNumber marshals as the 1-indexed page, or the string "unknown" when
// the extractor could not attribute a page. The field is always present.
type PageNumber int

func (p PageNumber) MarshalJSON() ([]byte, error) {
	if p <= 0 {
		return json.Marshal("unknown")
	}
	return []byte(strconv.Itoa(int(p))), nil
}

func (p *PageNumber) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PageNumber(n)
		return nil
	}
	*p = 0
	return nil
}
