package queue

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := Open(filepath.Join(t.TempDir(), "image_queue"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return q
}

func TestQueue_PutReadRemove(t *testing.T) {
	q := openTestQueue(t)

	data := []byte{0x89, 0x50, 0x4e, 0x47}
	if err := q.Put("manual.docx_img_0", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := q.Read("manual.docx_img_0")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read = %v, want %v", got, data)
	}

	if err := q.Remove("manual.docx_img_0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := q.Read("manual.docx_img_0"); err == nil {
		t.Error("Read after Remove should fail")
	}
}

func TestQueue_ListOrder(t *testing.T) {
	q := openTestQueue(t)

	// Insert out of order; List must return lexicographic order.
	for _, id := range []string{"b.docx_img_1", "a.docx_img_0", "b.docx_img_0"} {
		if err := q.Put(id, []byte("x")); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}

	ids, err := q.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a.docx_img_0", "b.docx_img_0", "b.docx_img_1"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

func TestQueue_RemoveAbsentIsNoError(t *testing.T) {
	q := openTestQueue(t)
	if err := q.Remove("never-existed"); err != nil {
		t.Errorf("Remove of absent artifact: %v", err)
	}
}

func TestQueue_Len(t *testing.T) {
	q := openTestQueue(t)

	n, err := q.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("Len = %d, want 0", n)
	}

	if err := q.Put("doc.docx_img_0", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	n, err = q.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestQueue_Filename(t *testing.T) {
	q := openTestQueue(t)
	if got := q.Filename("doc.docx_img_3"); got != "doc.docx_img_3.png" {
		t.Errorf("Filename = %q, want %q", got, "doc.docx_img_3.png")
	}
}
