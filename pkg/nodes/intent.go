package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/codec"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

// Node names, used for graph wiring and edge declarations.
const (
	NodeIntent     = "intent"
	NodePlan       = "plan"
	NodeToolSelect = "tool_select"
	NodeParams     = "params"
	NodeExecute    = "execute"
	NodeUIAction   = "ui_action"
	NodeRespond    = "respond"
)

const intentSystemPrompt = `You classify requests to a device assistant.
Answer with JSON only: {"intent": "<INTENT>", "entities": {"name": "value", ...}}
Extract every entity mentioned (times, durations, titles, targets, directions, text).`

// Intent classifies the user request and extracts entities.
//
// A failed model call or an unparseable reply falls back to intent UNKNOWN
// with an explanatory fault, never an aborted turn.
type Intent struct {
	Inference ports.Inference
	Logger    *slog.Logger
}

// NewIntent creates the intent node.
func NewIntent(inference ports.Inference, logger *slog.Logger) *Intent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Intent{Inference: inference, Logger: logger}
}

func (n *Intent) Name() string { return NodeIntent }

func (n *Intent) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()
	next.Intent = domain.IntentUnknown

	if n.Inference == nil || !n.Inference.IsModelReady(ctx) {
		next.LastFault = "inference service not ready"
		next.NeedsClarification = true
		return next
	}

	out, err := n.Inference.Infer(ctx, n.buildPrompt(state), intentSystemPrompt)
	if err != nil {
		n.Logger.Debug("intent classification failed", "err", err)
		next.LastFault = fmt.Sprintf("intent classification failed: %v", err)
		next.NeedsClarification = true
		return next
	}

	obj := codec.ParseObject(out)
	if obj == nil {
		n.Logger.Debug("intent output unparseable", "output", out)
		next.LastFault = "could not parse intent classification"
		next.NeedsClarification = true
		return next
	}

	next.Intent = domain.ParseIntent(fmt.Sprint(obj["intent"]))
	next.Entities = stringMap(obj["entities"])
	if next.Intent == domain.IntentUnknown {
		next.NeedsClarification = true
	}
	n.Logger.Debug("intent classified", "intent", string(next.Intent), "entities", len(next.Entities))
	return next
}

func (n *Intent) buildPrompt(state *domain.TurnState) string {
	var b strings.Builder
	b.WriteString("Intents: ")
	for i, it := range domain.KnownIntents {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(it))
	}
	b.WriteString("\n\nRequest: ")
	b.WriteString(state.UserText)
	if state.ScreenContext != "" {
		b.WriteString("\n\nCurrent screen:\n")
		b.WriteString(state.ScreenContext)
	}
	return b.String()
}

func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}
