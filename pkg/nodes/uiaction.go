package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
	"github.com/stewardhq/steward/pkg/safety"
)

// UIAction handles intents with no capability mapping by synthesizing a typed
// action from the extracted entities. Every synthesized action passes the
// safety gate before it is performed; a dangerous verdict parks it in
// PendingConfirmation instead.
type UIAction struct {
	Gate      *safety.Gate
	Performer ports.ActionPerformer
	Logger    *slog.Logger
}

// NewUIAction creates the ui-action node. The performer may be nil, in which
// case allowed actions are recorded but not dispatched (headless mode).
func NewUIAction(gate *safety.Gate, performer ports.ActionPerformer, logger *slog.Logger) *UIAction {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &UIAction{Gate: gate, Performer: performer, Logger: logger}
}

func (n *UIAction) Name() string { return NodeUIAction }

func (n *UIAction) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()
	if state.SelectedCapability != "" || state.PendingConfirmation != nil {
		return next
	}

	intent := state.Intent
	step, planStep := state.Plan.CurrentStep()
	if planStep {
		intent = step.Intent
	} else if len(state.Results) > 0 {
		// The turn already acted; nothing left to synthesize.
		return next
	}

	action, ok := synthesize(intent, state)
	if !ok {
		if planStep {
			// An unactionable step must not stall the plan cycle.
			next.LastFault = "plan step not actionable: " + step.Description
			next.Plan = next.Plan.Advance()
		}
		return next
	}
	if planStep {
		next.Plan = next.Plan.Advance()
	}
	next.CandidateAction = &action

	decision := n.Gate.Evaluate(ctx, action, state.ScreenContext, state.SourcePackage)
	switch {
	case decision.Invalid:
		n.Logger.Warn("synthesized action rejected", "action", string(action.Type), "reason", decision.Reason)
		next.LastFault = "invalid action: " + decision.Reason
		next.NeedsClarification = true
		return next
	case decision.RequiresConfirmation:
		n.Logger.Info("action withheld pending confirmation",
			"action", string(action.Type),
			"reason", decision.Reason,
		)
		next.PendingConfirmation = &domain.PendingAction{
			Action:  action,
			Message: describeAction(action),
			Reason:  decision.Reason,
		}
		return next
	}

	if n.Performer != nil {
		if err := n.Performer.Perform(ctx, action); err != nil {
			n.Logger.Warn("action dispatch failed", "action", string(action.Type), "err", err)
			next.Results = append(next.Results, domain.Error{
				Code:    domain.CodeSystemError,
				Message: fmt.Sprintf("could not perform %s: %v", action.Type, err),
			})
			return next
		}
	}
	next.Results = append(next.Results, domain.Success{Message: describeAction(action)})
	return next
}

// synthesize builds a direct action for UI-backed intents, with a default
// direction or target when the entities left one out.
func synthesize(intent domain.Intent, state *domain.TurnState) (domain.Action, bool) {
	e := state.Entities
	switch intent {
	case domain.IntentNavigateBack:
		return domain.Action{Type: domain.ActionBack}, true
	case domain.IntentNavigateHome:
		return domain.Action{Type: domain.ActionHome}, true
	case domain.IntentScroll:
		dir := entity(e, "direction")
		if dir == "" {
			dir = "down"
		}
		return domain.Action{Type: domain.ActionScroll, Direction: strings.ToLower(dir)}, true
	case domain.IntentClickElement:
		target := entity(e, "target", "element", "button")
		if target == "" {
			target = state.UserText
		}
		return domain.Action{Type: domain.ActionClick, Target: target}, true
	case domain.IntentTypeText:
		text := entity(e, "text", "input")
		if text == "" {
			text = state.UserText
		}
		return domain.Action{Type: domain.ActionTypeText, Text: text}, true
	case domain.IntentOpenApp:
		app := entity(e, "app", "app_name", "target")
		if app == "" {
			return domain.Action{}, false
		}
		return domain.Action{Type: domain.ActionClick, Target: app}, true
	}
	return domain.Action{}, false
}

func entity(entities map[string]string, names ...string) string {
	for _, name := range names {
		if v, ok := entities[name]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func describeAction(a domain.Action) string {
	switch a.Type {
	case domain.ActionClick:
		return fmt.Sprintf("Tapped %q.", a.Target)
	case domain.ActionTypeText:
		return fmt.Sprintf("Typed %q.", a.Text)
	case domain.ActionScroll:
		return fmt.Sprintf("Scrolled %s.", a.Direction)
	case domain.ActionHome:
		return "Went to the home screen."
	case domain.ActionBack:
		return "Went back."
	case domain.ActionWait:
		return "Waited."
	case domain.ActionNone:
		return "Nothing to do."
	}
	return string(a.Type)
}
