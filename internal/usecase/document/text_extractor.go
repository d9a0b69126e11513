package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"handbook-rag/internal/domain/entity"
)

// Extractor turns raw file bytes into ordered page text.
type Extractor interface {
	ExtractPages(data []byte) ([]entity.PageText, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages returns one entry per page that has an extractable text
// layer, in document order. Pages without text are skipped; if no page
// yields text the whole extraction fails.
func (e *PDFExtractor) ExtractPages(data []byte) ([]entity.PageText, error) {
	if len(data) == 0 {
		return nil, &entity.ExtractionError{Err: fmt.Errorf("empty file")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &entity.ExtractionError{Err: fmt.Errorf("not a parseable PDF: %w", err)}
	}

	var pages []entity.PageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// page has no usable text layer, skip it
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, entity.PageText{Page: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, &entity.ExtractionError{Err: fmt.Errorf("no extractable text in any of %d pages", numPages)}
	}
	return pages, nil
}
