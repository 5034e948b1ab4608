// Package vision runs the background worker that drains the image-analysis
// queue through a vision-capable model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkoval/ragman/internal/index"
)

// describePrompt is the fixed instruction sent with every screenshot.
const describePrompt = "Analyze this application screenshot in detail for a technical manual. " +
	"For every button, icon, and navigation element: " +
	"1. Identify the visual shape (e.g., megaphone, gear, plus sign). " +
	"2. Note the color and screen location (e.g., top-right header, sidebar). " +
	"3. State the associated text label. " +
	"Explain the purpose of this screen as if teaching a new user."

// ImageIndex abstracts the index operations the worker needs.
type ImageIndex interface {
	Get(id string) (index.Entry, error)
	UpdateDescription(ctx context.Context, id, description string) error
}

// ArtifactStore abstracts the durable queue. List must return ids in the
// stable processing order.
type ArtifactStore interface {
	List() ([]string, error)
	Read(id string) ([]byte, error)
	Remove(id string) error
}

// Describer produces a textual description of a base64-encoded image.
type Describer interface {
	Describe(ctx context.Context, prompt, imageB64 string) (string, error)
}

// Worker drains the image queue: one long-lived background task that sweeps
// all pending artifacts, describes each through the vision model, writes the
// description back into the index, and removes the artifact. A failing item
// is logged and retried on the next sweep; it never stops the worker.
type Worker struct {
	index  ImageIndex
	queue  ArtifactStore
	vision Describer
	poll   time.Duration
	logger *slog.Logger
}

// NewWorker creates a Worker. If pollInterval is <= 0, it defaults to 10s.
func NewWorker(idx ImageIndex, queue ArtifactStore, vision Describer, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &Worker{
		index:  idx,
		queue:  queue,
		vision: vision,
		poll:   pollInterval,
		logger: slog.Default(),
	}
}

// Run sweeps the queue, then sleeps for the poll interval, until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := w.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("worker sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// Sweep visits every pending artifact once, in the queue's stable order.
// Per-item failures are logged and the sweep continues; Sweep itself only
// fails when the queue cannot be listed or ctx is cancelled.
func (w *Worker) Sweep(ctx context.Context) error {
	ids, err := w.queue.List()
	if err != nil {
		return fmt.Errorf("listing queue: %w", err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.processArtifact(ctx, id); err != nil {
			w.logger.Warn("image analysis failed, will retry next sweep", "id", id, "error", err)
		}
	}

	return nil
}

func (w *Worker) processArtifact(ctx context.Context, id string) error {
	entry, err := w.index.Get(id)
	if errors.Is(err, index.ErrNotFound) {
		// Orphaned artifact: no index entry references it anymore.
		w.logger.Warn("removing orphaned queue artifact", "id", id)
		return w.queue.Remove(id)
	}
	if err != nil {
		return fmt.Errorf("looking up entry: %w", err)
	}

	if entry.Processed {
		// Defensive cleanup: description already present.
		return w.queue.Remove(id)
	}

	data, err := w.queue.Read(id)
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}

	imageB64, err := EncodeForAnalysis(data)
	if err != nil {
		return fmt.Errorf("normalizing image: %w", err)
	}

	description, err := w.vision.Describe(ctx, describePrompt, imageB64)
	if err != nil {
		return fmt.Errorf("describing image: %w", err)
	}

	if err := w.index.UpdateDescription(ctx, id, description); err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	if err := w.queue.Remove(id); err != nil {
		return err
	}

	w.logger.Info("image described", "id", id, "source", entry.Source)
	return nil
}
