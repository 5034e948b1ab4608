// Package index persists document passages and screenshot descriptions in
// SQLite and serves similarity queries over their embeddings.
package index

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// Entry kinds.
const (
	KindText  = "text"
	KindImage = "image"
)

// Entry is one indexed passage. Text entries are immutable once created.
// Image entries start unprocessed with a placeholder content and transition
// exactly once to Processed=true when the vision description arrives.
type Entry struct {
	ID        string
	Source    string
	Kind      string // "text" or "image"
	Content   string
	Processed bool
	CreatedAt time.Time
}

// ScoredEntry is an Entry with a similarity score attached.
type ScoredEntry struct {
	Entry
	Score float32
}

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
