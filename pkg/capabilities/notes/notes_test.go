package notes

import (
	"context"
	"strings"
	"testing"

	"github.com/stewardhq/steward/pkg/domain"
)

func TestCreateNote(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "create_note", map[string]any{
		"content": "buy milk", "title": "groceries",
	})

	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if s.Message != "Saved your note." || s.Data["count"] != 1 {
		t.Errorf("resp = %+v", s)
	}
	notes := m.Notes()
	if len(notes) != 1 || notes[0].Content != "buy milk" || notes[0].Title != "groceries" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestCreateNote_ContentRequired(t *testing.T) {
	m := New()
	for _, params := range []map[string]any{nil, {"content": "   "}} {
		resp := m.Execute(context.Background(), "create_note", params)
		e, ok := resp.(domain.Error)
		if !ok || e.Code != domain.CodeInvalidParams {
			t.Errorf("params %v: resp = %#v", params, resp)
		}
	}
}

func TestListNotes_Empty(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "list_notes", nil)
	s, ok := resp.(domain.Success)
	if !ok || s.Message != "You have no notes." {
		t.Errorf("resp = %#v", resp)
	}
}

func TestListNotes_NewestFirst(t *testing.T) {
	m := New()
	m.Execute(context.Background(), "create_note", map[string]any{"content": "first"})
	m.Execute(context.Background(), "create_note", map[string]any{"content": "second"})

	resp := m.Execute(context.Background(), "list_notes", nil)
	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if !strings.HasPrefix(s.Message, "You have 2 note(s):") {
		t.Errorf("message = %q", s.Message)
	}
	if strings.Index(s.Message, "second") > strings.Index(s.Message, "first") {
		t.Errorf("notes not newest first: %q", s.Message)
	}
}

func TestUnknownOperation(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "pin_note", nil)
	e, ok := resp.(domain.Error)
	if !ok || e.Code != domain.CodeNotFound {
		t.Errorf("resp = %#v", resp)
	}
}
