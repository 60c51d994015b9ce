package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

// GenerateSchema renders the available modules' operations and parameters
// into prompt-ready text. Unavailable modules are listed separately together
// with their missing permissions, so the model is told what it cannot
// currently do instead of failing later.
//
// This text is the de facto wire format toward the inference service: the
// model is expected to echo the operation ids and parameter names back in its
// JSON output, so the layout must stay stable.
func (r *Registry) GenerateSchema(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("# Available capabilities\n")
	b.WriteString(`Call a capability by answering with JSON: {"call":"module.operation","params":{...}}` + "\n")

	available := r.AvailableModules(ctx)
	for _, m := range available {
		fmt.Fprintf(&b, "\n## %s: %s\n", m.ID(), m.Description())
		for _, op := range m.Operations() {
			fmt.Fprintf(&b, "- %s.%s: %s\n", m.ID(), op.ID, op.Description)
			for _, p := range op.Params {
				b.WriteString("  - ")
				b.WriteString(paramLine(p))
				b.WriteByte('\n')
			}
			for _, ex := range op.Examples {
				fmt.Fprintf(&b, "  Example: %s\n", ex)
			}
		}
	}

	unavailable := r.unavailableModules(ctx)
	if len(unavailable) > 0 {
		b.WriteString("\n# Unavailable capabilities\n")
		for _, u := range unavailable {
			if len(u.missing) > 0 {
				fmt.Fprintf(&b, "- %s (missing permissions: %s)\n", u.module.ID(), strings.Join(u.missing, ", "))
			} else {
				fmt.Fprintf(&b, "- %s (not available on this device)\n", u.module.ID())
			}
		}
	}
	return b.String()
}

// GenerateCompactSchema renders one signature line per operation, used by the
// parameter-extraction prompt where token budget matters.
func (r *Registry) GenerateCompactSchema(ctx context.Context) string {
	var b strings.Builder
	for _, m := range r.AvailableModules(ctx) {
		for _, op := range m.Operations() {
			fmt.Fprintf(&b, "%s.%s(%s)\n", m.ID(), op.ID, compactParams(op))
		}
	}
	return b.String()
}

// OperationSchema renders a single operation the way GenerateSchema would.
func (r *Registry) OperationSchema(moduleID string, op domain.Operation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.%s: %s\n", moduleID, op.ID, op.Description)
	for _, p := range op.Params {
		b.WriteString("- ")
		b.WriteString(paramLine(p))
		b.WriteByte('\n')
	}
	for _, ex := range op.Examples {
		fmt.Fprintf(&b, "Example: %s\n", ex)
	}
	return b.String()
}

func paramLine(p domain.ParamSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s", p.Name, p.Type)
	if p.Required {
		b.WriteString(", required")
	}
	b.WriteString(")")
	if p.Description != "" {
		b.WriteString(": " + p.Description)
	}
	if len(p.Enum) > 0 {
		fmt.Fprintf(&b, " [one of: %s]", strings.Join(p.Enum, ", "))
	}
	if p.Default != nil {
		fmt.Fprintf(&b, " (default %v)", p.Default)
	}
	return b.String()
}

func compactParams(op domain.Operation) string {
	parts := make([]string, 0, len(op.Params))
	for _, p := range op.Params {
		s := p.Name + ":" + string(p.Type)
		if p.Required {
			s += "!"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

type unavailableModule struct {
	module  ports.CapabilityModule
	missing []string
}

func (r *Registry) unavailableModules(ctx context.Context) []unavailableModule {
	var out []unavailableModule
	for _, m := range r.Modules() {
		missing := r.MissingPermissions(ctx, m)
		if len(missing) == 0 && m.IsAvailable(ctx) {
			continue
		}
		out = append(out, unavailableModule{module: m, missing: missing})
	}
	return out
}
