package llm

import "context"

// Vision binds a Client to a fixed vision-capable model.
type Vision struct {
	client *Client
	model  string
}

// NewVision creates a Vision using the given client and model name.
func NewVision(c *Client, model string) *Vision {
	return &Vision{client: c, model: model}
}

// Describe submits the instruction prompt and a base64-encoded PNG image
// and returns the model's textual description.
func (v *Vision) Describe(ctx context.Context, prompt, imageB64 string) (string, error) {
	return v.client.ChatVision(ctx, v.model, prompt, imageB64)
}
