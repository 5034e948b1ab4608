// Package docparse extracts ordered paragraph text and embedded images from
// manual documents. DOCX is the full-fidelity path (text + screenshots);
// PDF is text-only.
package docparse

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is the parsed form of a manual: paragraphs in reading order and
// embedded images in the document's declared relationship order.
type Document struct {
	Paragraphs []string
	Images     [][]byte
}

// Supported reports whether the file name has a parseable extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".pdf":
		return true
	}
	return false
}

// Parse dispatches to the parser for the file's extension.
func Parse(path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return ParseDocx(path)
	case ".pdf":
		return ParsePDF(path)
	}
	return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}
