package nodes

import (
	"context"
	"log/slog"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/registry"
)

// Execute dispatches the selected capability call through the router and
// appends the response to the turn's result history. Explicit call failures
// (missing tool, invalid params, missing permission, timeout) set the turn's
// fatal error field without throwing; a Confirmation response parks the
// pending action for out-of-band approval.
type Execute struct {
	Router *registry.Router
	Logger *slog.Logger
}

// NewExecute creates the execution node.
func NewExecute(router *registry.Router, logger *slog.Logger) *Execute {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Execute{Router: router, Logger: logger}
}

func (n *Execute) Name() string { return NodeExecute }

func (n *Execute) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()
	if state.SelectedCapability == "" {
		return next
	}

	params := state.Params
	if params == nil {
		params = map[string]any{}
	}
	resp := n.Router.Execute(ctx, state.SelectedCapability, params)
	next.Results = append(next.Results, resp)

	switch v := resp.(type) {
	case domain.Success:
		n.Logger.Debug("capability call succeeded", "call", state.SelectedCapability)
		if next.Plan != nil {
			next.Plan = next.Plan.Advance()
		}
	case domain.Error:
		n.Logger.Warn("capability call failed",
			"call", state.SelectedCapability,
			"code", string(v.Code),
			"err", v.Message,
		)
		next.Err = domain.Describe(v)
	case domain.PermissionRequired:
		n.Logger.Warn("capability call missing permissions",
			"call", state.SelectedCapability,
			"missing", v.Missing,
		)
		next.Err = domain.Describe(v)
	case domain.Confirmation:
		n.Logger.Info("capability call withheld pending confirmation",
			"call", state.SelectedCapability,
		)
		pending := v.Pending
		if pending.Call == "" {
			pending.Call = state.SelectedCapability
			pending.Params = params
		}
		if pending.Message == "" {
			pending.Message = v.Message
		}
		next.PendingConfirmation = &pending
	}
	return next
}
