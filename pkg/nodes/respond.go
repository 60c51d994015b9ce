package nodes

import (
	"context"
	"log/slog"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

const answerSystemPrompt = `You are a concise device assistant. Answer the user's question directly,
using the screen context when it helps. Plain text, no JSON.`

// Respond renders the turn's outcome into natural language and marks the turn
// complete. The one exception is an active multi-step plan with steps left:
// the turn cycles back through tool selection until the plan is done or the
// iteration ceiling stops it.
type Respond struct {
	Inference ports.Inference
	Logger    *slog.Logger
}

// NewRespond creates the response node.
func NewRespond(inference ports.Inference, logger *slog.Logger) *Respond {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Respond{Inference: inference, Logger: logger}
}

func (n *Respond) Name() string { return NodeRespond }

func (n *Respond) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()

	if next.PendingConfirmation == nil && !next.Plan.Done() && next.Err == "" {
		// Plan still running; let the cycle continue without a response.
		return next
	}

	next.Completed = true
	next.Response = n.render(ctx, state)
	return next
}

func (n *Respond) render(ctx context.Context, state *domain.TurnState) string {
	if p := state.PendingConfirmation; p != nil {
		msg := p.Message
		if msg == "" {
			msg = "This action needs your approval."
		}
		if p.Reason != "" {
			msg += " (" + p.Reason + ")"
		}
		return "Before I continue: " + msg + " Say yes to confirm or no to cancel."
	}

	if last, ok := state.LastResult(); ok {
		if text := domain.Describe(last); text != "" {
			return text
		}
	}

	if state.Intent == domain.IntentAnswer && n.Inference != nil && n.Inference.IsModelReady(ctx) {
		prompt := state.UserText
		if state.ScreenContext != "" {
			prompt += "\n\nCurrent screen:\n" + state.ScreenContext
		}
		if out, err := n.Inference.Infer(ctx, prompt, answerSystemPrompt); err == nil && out != "" {
			return out
		} else if err != nil {
			n.Logger.Debug("answer generation failed", "err", err)
		}
	}

	if state.NeedsClarification {
		if state.LastFault != "" {
			return "I didn't catch that (" + state.LastFault + "). Could you rephrase?"
		}
		return "I'm not sure what you meant. Could you rephrase?"
	}
	return "I couldn't find anything to do for that."
}
