package llm

import "context"

// Completion binds a Client to a fixed text-completion model.
type Completion struct {
	client *Client
	model  string
}

// NewCompletion creates a Completion using the given client and model name.
func NewCompletion(c *Client, model string) *Completion {
	return &Completion{client: c, model: model}
}

// Complete returns the model's full response for a single-turn prompt.
func (c *Completion) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return c.client.Chat(ctx, c.model, prompt, temperature)
}

// CompleteStream streams the model's response token by token through onToken.
func (c *Completion) CompleteStream(ctx context.Context, prompt string, temperature float64, onToken func(token string) error) error {
	return c.client.ChatStream(ctx, c.model, prompt, temperature, onToken)
}
