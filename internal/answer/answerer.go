// Package answer builds grounded answers from the most relevant indexed
// passages via an external completion model.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkoval/ragman/internal/index"
)

// answerTemperature keeps completions near-deterministic so answers stay
// reproducible and grounded.
const answerTemperature = 0.01

// defaultTopK is the number of passages retrieved per question.
const defaultTopK = 6

// Retriever abstracts similarity search over the index.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]index.ScoredEntry, error)
}

// Completer abstracts the external text-completion model.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	CompleteStream(ctx context.Context, prompt string, temperature float64, onToken func(token string) error) error
}

// Answerer is stateless given current index contents: every question runs a
// fresh top-K retrieval and a single completion call. Upstream failures are
// returned to the caller; retry policy belongs to the upstream client.
type Answerer struct {
	retriever Retriever
	model     Completer
	topK      int
}

// NewAnswerer creates an Answerer retrieving topK passages per question
// (default 6 if <= 0).
func NewAnswerer(retriever Retriever, model Completer, topK int) *Answerer {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Answerer{retriever: retriever, model: model, topK: topK}
}

// Answer returns a complete answer for the question.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	contextText, err := a.buildContext(ctx, question)
	if err != nil {
		return "", err
	}

	response, err := a.model.Complete(ctx, answerPrompt(contextText, question), answerTemperature)
	if err != nil {
		return "", fmt.Errorf("completing answer: %w", err)
	}
	return response, nil
}

// AnswerStream streams the answer token by token through onToken.
func (a *Answerer) AnswerStream(ctx context.Context, question string, onToken func(token string) error) error {
	contextText, err := a.buildContext(ctx, question)
	if err != nil {
		return err
	}

	if err := a.model.CompleteStream(ctx, streamPrompt(contextText, question), answerTemperature, onToken); err != nil {
		return fmt.Errorf("streaming answer: %w", err)
	}
	return nil
}

// buildContext retrieves the top-K passages and joins their contents with
// blank lines, preserving the similarity-query order.
func (a *Answerer) buildContext(ctx context.Context, question string) (string, error) {
	entries, err := a.retriever.Query(ctx, question, a.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Content
	}
	return strings.Join(texts, "\n\n"), nil
}
