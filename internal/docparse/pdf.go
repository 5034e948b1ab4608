package docparse

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParsePDF extracts the plain text of a PDF, one paragraph per non-empty
// line. PDFs carry no extractable screenshot relationships, so Images is
// always empty.
func ParsePDF(filePath string) (Document, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return Document{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return Document{}, fmt.Errorf("extracting pdf text: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Document{}, fmt.Errorf("reading pdf text: %w", err)
	}

	var paragraphs []string
	for _, line := range strings.Split(string(data), "\n") {
		if text := strings.TrimSpace(line); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return Document{Paragraphs: paragraphs}, nil
}
