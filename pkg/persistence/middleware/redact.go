package middleware

import (
	"context"
	"regexp"

	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

// Mask replaces redacted spans in persisted text.
const Mask = "[redacted]"

type redactMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks pattern matches in the
// free-text fields of a turn before it is persisted. Screen context and user
// text routinely contain whatever was on screen, so stores that outlive the
// process should not see card numbers or credentials in the clear.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, state *domain.TurnState) error {
	// Clone so the in-memory state used by the pipeline keeps the original text.
	cloned := state.Clone()

	cloned.UserText = m.mask(cloned.UserText)
	cloned.ScreenContext = m.mask(cloned.ScreenContext)
	cloned.Response = m.mask(cloned.Response)
	for k, v := range cloned.Entities {
		cloned.Entities[k] = m.mask(v)
	}
	if p := cloned.PendingConfirmation; p != nil {
		p.Action.Text = m.mask(p.Action.Text)
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.TurnState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) mask(text string) string {
	for _, re := range m.patterns {
		text = re.ReplaceAllString(text, Mask)
	}
	return text
}
