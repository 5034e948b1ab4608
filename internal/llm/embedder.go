package llm

import "context"

// Embedder binds a Client to a fixed embedding model so callers don't carry
// the model name around.
type Embedder struct {
	client *Client
	model  string
}

// NewEmbedder creates an Embedder using the given client and model name.
func NewEmbedder(c *Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}

// EmbedBatch returns embedding vectors for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbedBatch(ctx, e.model, texts)
}
