package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/codec"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
	"github.com/stewardhq/steward/pkg/registry"
)

const paramsSystemPrompt = `You extract call parameters for a device capability.
Answer with JSON only: {"call": "<module.operation>", "params": {...}}
Use exactly the parameter names from the schema. Omit parameters the request does not mention.`

// Params resolves the selected operation's parameters. It reuses
// already-extracted entities when they cover the operation; otherwise it
// issues a second, capability-schema-scoped prompt for just the needed
// parameters.
type Params struct {
	Inference ports.Inference
	Registry  *registry.Registry
	Logger    *slog.Logger
}

// NewParams creates the parameter-extraction node.
func NewParams(inference ports.Inference, reg *registry.Registry, logger *slog.Logger) *Params {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Params{Inference: inference, Registry: reg, Logger: logger}
}

func (n *Params) Name() string { return NodeParams }

func (n *Params) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	next := state.Clone()
	if state.SelectedCapability == "" {
		return next
	}

	op, ok := n.lookupOperation(state.SelectedCapability)
	if !ok {
		// Dispatch will surface the precise error; nothing to extract.
		return next
	}
	if len(op.Params) == 0 {
		next.Params = map[string]any{}
		return next
	}

	if params, ok := paramsFromEntities(op, state.Entities); ok {
		n.Logger.Debug("parameters resolved from entities", "call", state.SelectedCapability)
		next.Params = params
		return next
	}

	if n.Inference == nil || !n.Inference.IsModelReady(ctx) {
		next.LastFault = "inference service not ready for parameter extraction"
		return next
	}

	moduleID, _, _ := strings.Cut(state.SelectedCapability, ".")
	prompt := fmt.Sprintf("Schema:\n%s\nRequest: %s",
		n.Registry.OperationSchema(moduleID, op), state.UserText)
	out, err := n.Inference.Infer(ctx, prompt, paramsSystemPrompt)
	if err != nil {
		n.Logger.Debug("parameter extraction failed", "err", err)
		next.LastFault = fmt.Sprintf("parameter extraction failed: %v", err)
		return next
	}

	if tc := codec.ParseToolCall(out); tc != nil {
		next.Params = declaredParams(op, tc.Params)
		return next
	}
	if obj := codec.ParseObject(out); obj != nil {
		// Some replies skip the envelope and answer with the bare params.
		if p, ok := obj["params"].(map[string]any); ok {
			next.Params = declaredParams(op, p)
		} else {
			next.Params = declaredParams(op, obj)
		}
		return next
	}

	next.LastFault = "could not parse extracted parameters"
	return next
}

func (n *Params) lookupOperation(call string) (domain.Operation, bool) {
	moduleID, opID, found := strings.Cut(call, ".")
	if !found {
		for _, m := range n.Registry.Modules() {
			for _, op := range m.Operations() {
				if op.ID == call {
					return op, true
				}
			}
		}
		return domain.Operation{}, false
	}
	m, ok := n.Registry.Get(moduleID)
	if !ok {
		return domain.Operation{}, false
	}
	for _, op := range m.Operations() {
		if op.ID == opID {
			return op, true
		}
	}
	return domain.Operation{}, false
}

// declaredParams keeps only the parameters the operation declares. Models
// occasionally invent extra keys alongside the real ones.
func declaredParams(op domain.Operation, params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for name, val := range params {
		if _, ok := op.Param(name); ok {
			out[name] = val
		}
	}
	return out
}

// paramsFromEntities maps extracted entities onto the operation's parameters,
// coercing values by declared type. It succeeds only when every required
// parameter is covered.
func paramsFromEntities(op domain.Operation, entities map[string]string) (map[string]any, bool) {
	if len(entities) == 0 {
		return nil, false
	}
	params := make(map[string]any)
	for _, spec := range op.Params {
		raw, ok := entities[spec.Name]
		if !ok {
			if spec.Required {
				return nil, false
			}
			continue
		}
		val, err := coerce(spec.Type, raw)
		if err != nil {
			return nil, false
		}
		params[spec.Name] = val
	}
	return params, true
}

func coerce(t domain.ParamType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case domain.ParamInteger:
		return strconv.Atoi(raw)
	case domain.ParamFloat:
		return strconv.ParseFloat(raw, 64)
	case domain.ParamBoolean:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
