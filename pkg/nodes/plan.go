package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/codec"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

const planSystemPrompt = `You break a multi-step device request into ordered steps.
Answer with JSON only:
{"steps": [{"description": "...", "intent": "<INTENT>", "entities": ["name", ...], "call": "module.operation"}]}
Omit "call" when the step is a UI action.`

// Plan turns a multi-step request into an ordered plan. It only runs for
// MULTI_STEP intents; every other turn passes through untouched.
type Plan struct {
	Inference ports.Inference
	Logger    *slog.Logger
}

// NewPlan creates the plan node.
func NewPlan(inference ports.Inference, logger *slog.Logger) *Plan {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Plan{Inference: inference, Logger: logger}
}

func (n *Plan) Name() string { return NodePlan }

func (n *Plan) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	if state.Intent != domain.IntentMultiStep || state.Plan != nil {
		return state.Clone()
	}

	next := state.Clone()
	if n.Inference == nil || !n.Inference.IsModelReady(ctx) {
		next.LastFault = "inference service not ready for planning"
		next.NeedsClarification = true
		next.Intent = domain.IntentUnknown
		return next
	}

	prompt := fmt.Sprintf("Request: %s\n\nCurrent screen:\n%s", state.UserText, state.ScreenContext)
	out, err := n.Inference.Infer(ctx, prompt, planSystemPrompt)
	if err != nil {
		n.Logger.Debug("planning failed", "err", err)
		next.LastFault = fmt.Sprintf("planning failed: %v", err)
		next.NeedsClarification = true
		next.Intent = domain.IntentUnknown
		return next
	}

	plan := decodePlan(out)
	if plan == nil || len(plan.Steps) == 0 {
		n.Logger.Debug("plan output unparseable", "output", out)
		next.LastFault = "could not parse plan"
		next.NeedsClarification = true
		next.Intent = domain.IntentUnknown
		return next
	}

	n.Logger.Debug("plan created", "steps", len(plan.Steps))
	next.Plan = plan
	return next
}

func decodePlan(out string) *domain.Plan {
	obj := codec.ParseObject(out)
	if obj == nil {
		return nil
	}
	raw, ok := obj["steps"]
	if !ok {
		return nil
	}
	var steps []domain.PlanStep
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &steps,
		WeaklyTypedInput: true,
	})
	if err != nil || dec.Decode(raw) != nil {
		return nil
	}
	for i := range steps {
		steps[i].Intent = domain.ParseIntent(string(steps[i].Intent))
	}
	return &domain.Plan{Steps: steps}
}
