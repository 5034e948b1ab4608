// Package status reports image-analysis progress by combining queue contents
// with index bookkeeping.
package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nkoval/ragman/internal/index"
)

// EntryIndex abstracts the index lookups the reporter needs.
type EntryIndex interface {
	Get(id string) (index.Entry, error)
	ImageCounts() (total, processed int, err error)
}

// ArtifactStore abstracts the durable queue. List must return ids in the
// same stable order the worker processes them, so the reported current image
// is the one the worker picks up next.
type ArtifactStore interface {
	List() ([]string, error)
	Filename(id string) string
}

// CurrentImage identifies the artifact at the head of the queue.
type CurrentImage struct {
	Filename  string `json:"filename"`
	SourceDoc string `json:"source_doc"`
}

// Snapshot is a point-in-time view of analysis progress. Counts come from
// two stores without a shared transaction, so a snapshot taken mid-sweep may
// be momentarily inconsistent; it converges once the sweep finishes.
type Snapshot struct {
	PendingImages   int           `json:"pending_images"`
	TotalImages     int           `json:"total_images"`
	ProcessedImages int           `json:"processed_images"`
	IsProcessing    bool          `json:"is_processing"`
	CurrentImage    *CurrentImage `json:"current_image"`
}

// Reporter produces progress snapshots.
type Reporter struct {
	index EntryIndex
	queue ArtifactStore
}

// NewReporter creates a Reporter over the given index and queue.
func NewReporter(idx EntryIndex, queue ArtifactStore) *Reporter {
	return &Reporter{index: idx, queue: queue}
}

// Report returns the current progress snapshot.
func (r *Reporter) Report() (Snapshot, error) {
	ids, err := r.queue.List()
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing queue: %w", err)
	}

	total, processed, err := r.index.ImageCounts()
	if err != nil {
		return Snapshot{}, fmt.Errorf("counting images: %w", err)
	}

	snap := Snapshot{
		PendingImages:   len(ids),
		TotalImages:     total,
		ProcessedImages: processed,
		IsProcessing:    len(ids) > 0,
	}

	// The next image the worker will touch is the first queued id whose
	// entry still lacks a description.
	for _, id := range ids {
		entry, err := r.index.Get(id)
		if errors.Is(err, index.ErrNotFound) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("looking up entry: %w", err)
		}
		if entry.Processed {
			continue
		}
		snap.CurrentImage = &CurrentImage{
			Filename:  r.queue.Filename(id),
			SourceDoc: sourceDoc(id),
		}
		break
	}

	return snap, nil
}

// sourceDoc strips the image-chunk suffix from an entry id, recovering the
// source document name ("manual.docx_img_3" -> "manual.docx").
func sourceDoc(id string) string {
	i := strings.LastIndex(id, "_img_")
	if i < 0 {
		return id
	}
	return id[:i]
}
