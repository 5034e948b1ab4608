// Package ingest turns uploaded manual documents into index entries and
// queued image-analysis jobs.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nkoval/ragman/internal/docparse"
	"github.com/nkoval/ragman/internal/index"
)

// PlaceholderDescription is the content of an image entry before the vision
// worker has described it.
const PlaceholderDescription = "[Image queued for analysis]"

// DocumentIndex abstracts the vector index operations ingestion needs.
type DocumentIndex interface {
	HasSource(source string) (bool, error)
	Add(ctx context.Context, entries []index.Entry) error
}

// ArtifactQueue abstracts the durable image queue.
type ArtifactQueue interface {
	Put(id string, data []byte) error
}

// Parser parses a document file into paragraphs and embedded images.
type Parser interface {
	Parse(path string) (docparse.Document, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string) (docparse.Document, error)

func (f ParserFunc) Parse(path string) (docparse.Document, error) { return f(path) }

// Ingestor registers documents in the index and queues their screenshots
// for asynchronous vision analysis.
type Ingestor struct {
	index        DocumentIndex
	queue        ArtifactQueue
	parser       Parser
	chunkSize    int
	chunkOverlap int
}

// NewIngestor creates an Ingestor. chunkSize/chunkOverlap are in runes;
// defaults of 2000/200 apply when non-positive.
func NewIngestor(idx DocumentIndex, q ArtifactQueue, parser Parser, chunkSize, chunkOverlap int) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if chunkOverlap <= 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 200
	}
	return &Ingestor{
		index:        idx,
		queue:        q,
		parser:       parser,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest parses the document at path and registers its passages and image
// placeholders in the index, one queue artifact per embedded image.
// Ingestion is idempotent per source name: a document whose base name is
// already indexed is skipped entirely. A parse failure aborts before any
// index write.
func (ing *Ingestor) Ingest(ctx context.Context, path string) error {
	source := filepath.Base(path)

	known, err := ing.index.HasSource(source)
	if err != nil {
		return fmt.Errorf("checking source %s: %w", source, err)
	}
	if known {
		return nil
	}

	doc, err := ing.parser.Parse(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}

	var entries []index.Entry

	text := strings.Join(doc.Paragraphs, "\n")
	for i, chunk := range chunkText(text, ing.chunkSize, ing.chunkOverlap) {
		entries = append(entries, index.Entry{
			ID:      fmt.Sprintf("%s_t_%d", source, i),
			Source:  source,
			Kind:    index.KindText,
			Content: chunk,
		})
	}

	// Queue artifacts are written before the bulk index write so a pending
	// artifact always exists by the time its placeholder entry is visible.
	for i, img := range doc.Images {
		id := fmt.Sprintf("%s_img_%d", source, i)
		if err := ing.queue.Put(id, img); err != nil {
			return fmt.Errorf("queueing image %s: %w", id, err)
		}
		entries = append(entries, index.Entry{
			ID:      id,
			Source:  source,
			Kind:    index.KindImage,
			Content: PlaceholderDescription,
		})
	}

	if err := ing.index.Add(ctx, entries); err != nil {
		return fmt.Errorf("indexing %s: %w", source, err)
	}

	return nil
}

// chunkText splits text into overlapping fixed-size rune windows so context
// is preserved across chunk boundaries.
func chunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
