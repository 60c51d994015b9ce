// Package notes implements a small note-taking capability backed by memory.
package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/stewardhq/steward/pkg/domain"
)

// Note is a stored note.
type Note struct {
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Module implements ports.CapabilityModule for notes.
type Module struct {
	mu    sync.Mutex
	notes []Note

	now func() time.Time
}

// New creates the notes module.
func New() *Module {
	return &Module{now: time.Now}
}

func (m *Module) ID() string          { return "notes" }
func (m *Module) Description() string { return "Create and list personal notes." }

func (m *Module) RequiredPermissions() []string { return nil }

func (m *Module) IsAvailable(ctx context.Context) bool { return true }

func (m *Module) Operations() []domain.Operation {
	return []domain.Operation{
		{
			ID:          "create_note",
			Description: "Save a new note.",
			Params: []domain.ParamSpec{
				{Name: "content", Type: domain.ParamString, Description: "Note body", Required: true},
				{Name: "title", Type: domain.ParamString, Description: "Optional title"},
			},
			Examples: []string{`{"call":"notes.create_note","params":{"content":"buy milk"}}`},
		},
		{
			ID:          "list_notes",
			Description: "List saved notes, newest first.",
		},
	}
}

func (m *Module) Execute(ctx context.Context, operationID string, params map[string]any) domain.Response {
	switch operationID {
	case "create_note":
		return m.createNote(params)
	case "list_notes":
		return m.listNotes()
	default:
		return domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("notes has no operation %q", operationID)}
	}
}

// Notes returns a snapshot of the stored notes.
func (m *Module) Notes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Note, len(m.notes))
	copy(out, m.notes)
	return out
}

func (m *Module) createNote(params map[string]any) domain.Response {
	var in struct {
		Content string `mapstructure:"content"`
		Title   string `mapstructure:"title"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Error{Code: domain.CodeSystemError, Message: err.Error()}
	}
	if err := dec.Decode(params); err != nil {
		return domain.Error{Code: domain.CodeInvalidParams, Message: "invalid parameters: " + err.Error()}
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.Error{Code: domain.CodeInvalidParams, Message: "content is required"}
	}

	note := Note{Title: in.Title, Content: in.Content, CreatedAt: m.now()}
	m.mu.Lock()
	m.notes = append(m.notes, note)
	count := len(m.notes)
	m.mu.Unlock()

	return domain.Success{
		Message: "Saved your note.",
		Data:    map[string]any{"count": count},
	}
}

func (m *Module) listNotes() domain.Response {
	m.mu.Lock()
	notes := make([]Note, len(m.notes))
	copy(notes, m.notes)
	m.mu.Unlock()

	if len(notes) == 0 {
		return domain.Success{Message: "You have no notes."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d note(s):\n", len(notes))
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		if n.Title != "" {
			fmt.Fprintf(&b, "- %s: %s\n", n.Title, n.Content)
		} else {
			fmt.Fprintf(&b, "- %s\n", n.Content)
		}
	}
	return domain.Success{
		Message: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"notes": notes},
	}
}
