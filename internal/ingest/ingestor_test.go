package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nkoval/ragman/internal/docparse"
	"github.com/nkoval/ragman/internal/index"
)

type mockIndex struct {
	sources map[string]bool
	added   []index.Entry
	addFn   func(ctx context.Context, entries []index.Entry) error
}

func (m *mockIndex) HasSource(source string) (bool, error) {
	return m.sources[source], nil
}

func (m *mockIndex) Add(ctx context.Context, entries []index.Entry) error {
	if m.addFn != nil {
		return m.addFn(ctx, entries)
	}
	m.added = append(m.added, entries...)
	return nil
}

type mockQueue struct {
	put   map[string][]byte
	putFn func(id string, data []byte) error
}

func (m *mockQueue) Put(id string, data []byte) error {
	if m.putFn != nil {
		return m.putFn(id, data)
	}
	if m.put == nil {
		m.put = make(map[string][]byte)
	}
	m.put[id] = data
	return nil
}

func staticParser(doc docparse.Document) Parser {
	return ParserFunc(func(string) (docparse.Document, error) { return doc, nil })
}

func TestIngest_TextAndImages(t *testing.T) {
	idx := &mockIndex{sources: map[string]bool{}}
	q := &mockQueue{}
	ing := NewIngestor(idx, q, staticParser(docparse.Document{
		Paragraphs: []string{"First paragraph.", "Second paragraph."},
		Images:     [][]byte{{1}, {2}},
	}), 2000, 200)

	if err := ing.Ingest(context.Background(), "/tmp/uploads/manual.docx"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(idx.added) != 3 {
		t.Fatalf("added %d entries, want 3 (1 text + 2 images)", len(idx.added))
	}

	text := idx.added[0]
	if text.ID != "manual.docx_t_0" {
		t.Errorf("text ID = %q, want %q", text.ID, "manual.docx_t_0")
	}
	if text.Kind != index.KindText {
		t.Errorf("text Kind = %q, want %q", text.Kind, index.KindText)
	}
	if want := "First paragraph.\nSecond paragraph."; text.Content != want {
		t.Errorf("text Content = %q, want %q", text.Content, want)
	}

	for i := 0; i < 2; i++ {
		img := idx.added[1+i]
		wantID := fmt.Sprintf("manual.docx_img_%d", i)
		if img.ID != wantID {
			t.Errorf("image ID = %q, want %q", img.ID, wantID)
		}
		if img.Kind != index.KindImage {
			t.Errorf("image Kind = %q, want %q", img.Kind, index.KindImage)
		}
		if img.Content != PlaceholderDescription {
			t.Errorf("image Content = %q, want placeholder", img.Content)
		}
		if img.Source != "manual.docx" {
			t.Errorf("image Source = %q, want %q", img.Source, "manual.docx")
		}
		if _, ok := q.put[wantID]; !ok {
			t.Errorf("no queue artifact for %s", wantID)
		}
	}
}

func TestIngest_SkipsKnownSource(t *testing.T) {
	idx := &mockIndex{sources: map[string]bool{"manual.docx": true}}
	q := &mockQueue{}
	ing := NewIngestor(idx, q, staticParser(docparse.Document{
		Paragraphs: []string{"text"},
		Images:     [][]byte{{1}},
	}), 0, 0)

	if err := ing.Ingest(context.Background(), "manual.docx"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(idx.added) != 0 {
		t.Errorf("re-ingest added %d entries, want 0", len(idx.added))
	}
	if len(q.put) != 0 {
		t.Errorf("re-ingest queued %d artifacts, want 0", len(q.put))
	}
}

func TestIngest_ParseFailureWritesNothing(t *testing.T) {
	idx := &mockIndex{sources: map[string]bool{}}
	q := &mockQueue{}
	parseErr := errors.New("corrupt document")
	ing := NewIngestor(idx, q, ParserFunc(func(string) (docparse.Document, error) {
		return docparse.Document{}, parseErr
	}), 0, 0)

	err := ing.Ingest(context.Background(), "broken.docx")
	if !errors.Is(err, parseErr) {
		t.Fatalf("Ingest error = %v, want wrapped parse error", err)
	}
	if len(idx.added) != 0 {
		t.Errorf("parse failure added %d entries, want 0", len(idx.added))
	}
	if len(q.put) != 0 {
		t.Errorf("parse failure queued %d artifacts, want 0", len(q.put))
	}
}

func TestIngest_QueueFailureAborts(t *testing.T) {
	idx := &mockIndex{sources: map[string]bool{}}
	q := &mockQueue{putFn: func(string, []byte) error { return errors.New("disk full") }}
	ing := NewIngestor(idx, q, staticParser(docparse.Document{
		Paragraphs: []string{"text"},
		Images:     [][]byte{{1}},
	}), 0, 0)

	if err := ing.Ingest(context.Background(), "manual.docx"); err == nil {
		t.Fatal("Ingest should fail when artifact write fails")
	}
	if len(idx.added) != 0 {
		t.Errorf("queue failure added %d entries, want 0", len(idx.added))
	}
}

func TestChunkText_Overlap(t *testing.T) {
	text := strings.Repeat("a", 450)
	chunks := chunkText(text, 200, 50)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 200 || len(chunks[1]) != 200 {
		t.Errorf("chunk lengths = %d, %d, want 200 each", len(chunks[0]), len(chunks[1]))
	}
	// Step is size-overlap = 150, so the last chunk covers runes 300..450.
	if len(chunks[2]) != 150 {
		t.Errorf("last chunk length = %d, want 150", len(chunks[2]))
	}
}

func TestChunkText_ShortInput(t *testing.T) {
	chunks := chunkText("short", 2000, 200)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("chunks = %v, want single chunk %q", chunks, "short")
	}
}

func TestChunkText_Empty(t *testing.T) {
	if chunks := chunkText("", 2000, 200); chunks != nil {
		t.Errorf("chunks = %v, want nil", chunks)
	}
}

func TestChunkText_MultibyteRunes(t *testing.T) {
	// Windows are rune-based: no chunk may split a multibyte rune.
	text := strings.Repeat("日本語テキスト", 60) // 360 runes
	chunks := chunkText(text, 200, 50)
	var rejoined []rune
	for i, c := range chunks {
		runes := []rune(c)
		if i > 0 {
			runes = runes[50:] // drop overlap
		}
		rejoined = append(rejoined, runes...)
	}
	if string(rejoined) != text {
		t.Error("rejoined chunks do not reproduce the input")
	}
}
