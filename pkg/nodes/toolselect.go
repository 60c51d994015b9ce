package nodes

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/registry"
)

// intentCalls is the static lookup from intent to fully qualified capability
// call. Intents outside this table take the direct UI-action path.
var intentCalls = map[domain.Intent]string{
	domain.IntentSetAlarm:  "clock.create_alarm",
	domain.IntentSetTimer:  "clock.set_timer",
	domain.IntentCheckTime: "clock.get_time",
	domain.IntentTakeNote:  "notes.create_note",
	domain.IntentListNotes: "notes.list_notes",
}

// ToolSelect maps the effective intent onto a registered capability call.
// It selects only when the target module is actually registered; otherwise
// the selection stays empty so the ui_action node can handle the turn.
type ToolSelect struct {
	Registry *registry.Registry
	Logger   *slog.Logger
}

// NewToolSelect creates the tool-select node.
func NewToolSelect(reg *registry.Registry, logger *slog.Logger) *ToolSelect {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ToolSelect{Registry: reg, Logger: logger}
}

func (n *ToolSelect) Name() string { return NodeToolSelect }

func (n *ToolSelect) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()
	next.SelectedCapability = ""
	next.Params = nil

	intent := state.Intent
	if step, ok := state.Plan.CurrentStep(); ok {
		intent = step.Intent
		if step.Call != "" {
			if n.registered(step.Call) {
				next.SelectedCapability = step.Call
			}
			return next
		}
	}

	call, ok := intentCalls[intent]
	if !ok {
		return next
	}
	if !n.registered(call) {
		n.Logger.Debug("intent maps to unregistered module", "intent", string(intent), "call", call)
		return next
	}
	next.SelectedCapability = call
	return next
}

func (n *ToolSelect) registered(call string) bool {
	moduleID, _, found := strings.Cut(call, ".")
	if !found {
		// Bare operation ids resolve at dispatch time; accept if any module
		// declares the operation.
		for _, m := range n.Registry.Modules() {
			for _, op := range m.Operations() {
				if op.ID == call {
					return true
				}
			}
		}
		return false
	}
	_, ok := n.Registry.Get(moduleID)
	return ok
}
