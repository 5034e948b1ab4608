// Package queue is the durable image-analysis queue: one artifact file per
// pending job, named after the image entry it belongs to. The processing
// order is an explicit contract: List returns ids sorted lexicographically,
// and both the vision worker and the status reporter follow that order.
package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const artifactExt = ".png"

// Queue stores pending image artifacts in a single directory.
type Queue struct {
	dir string
}

// Open creates the queue directory if needed and returns the queue.
func Open(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue directory: %w", err)
	}
	return &Queue{dir: dir}, nil
}

// Put persists the raw image bytes as the artifact for the given image id.
func (q *Queue) Put(id string, data []byte) error {
	if err := os.WriteFile(q.path(id), data, 0o644); err != nil {
		return fmt.Errorf("writing queue artifact %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all pending artifacts in ascending lexicographic
// order. This is the processing order.
func (q *Queue) List() ([]string, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("listing queue directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), artifactExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), artifactExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the raw image bytes for the given id.
func (q *Queue) Read(id string) ([]byte, error) {
	data, err := os.ReadFile(q.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading queue artifact %s: %w", id, err)
	}
	return data, nil
}

// Remove deletes the artifact for the given id. Removing an absent artifact
// is not an error.
func (q *Queue) Remove(id string) error {
	if err := os.Remove(q.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing queue artifact %s: %w", id, err)
	}
	return nil
}

// Len returns the number of pending artifacts.
func (q *Queue) Len() (int, error) {
	ids, err := q.List()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Filename returns the artifact file name for an image id.
func (q *Queue) Filename(id string) string {
	return id + artifactExt
}

func (q *Queue) path(id string) string {
	return filepath.Join(q.dir, q.Filename(id))
}
