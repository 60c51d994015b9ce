package safety

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
)

// Decision is the gate's verdict for one candidate action.
type Decision struct {
	// Allowed means the action may execute immediately.
	Allowed bool
	// RequiresConfirmation means the action must wait for an explicit
	// out-of-band approval.
	RequiresConfirmation bool
	// Invalid means the action failed structural validation and must not
	// execute at all.
	Invalid bool
	// Reason explains a non-allowed decision.
	Reason string
	// Risk carries the classifier's opinion when it produced one.
	Risk *domain.RiskAssessment
}

// Gate combines the firewall and the semantic classifier.
// It holds no mutable state; every call is a pure function of its inputs plus
// the optionally-available inference service.
type Gate struct {
	firewall   *Firewall
	classifier *Classifier
	logger     *slog.Logger
}

// GateOption configures the Gate.
type GateOption func(*Gate)

// WithGateLogger sets the gate logger.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = logger }
}

// NewGate creates a gate. The classifier may be nil, in which case the
// firewall verdict alone governs.
func NewGate(firewall *Firewall, classifier *Classifier, opts ...GateOption) *Gate {
	g := &Gate{
		firewall:   firewall,
		classifier: classifier,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate decides whether the action may execute now.
//
// A structurally invalid action is rejected before the firewall sees it. The
// final verdict is the union of the firewall's and the classifier's opinions:
// either layer flagging the action forces confirmation. The union is a
// deliberate fail-safe policy; requiring both layers to agree would weaken
// the guarantee this gate exists to provide.
func (g *Gate) Evaluate(ctx context.Context, action domain.Action, screenContext, sourcePackage string) Decision {
	if err := Validate(action); err != nil {
		return Decision{Invalid: true, Reason: err.Error()}
	}

	verdict := g.firewall.Evaluate(action)

	var risk *domain.RiskAssessment
	if g.classifier != nil {
		risk = g.classifier.Assess(ctx, action, screenContext, sourcePackage)
	}

	if verdict.Dangerous {
		g.logger.Info("firewall flagged action",
			"action", string(action.Type),
			"category", verdict.Category,
			"matched", verdict.Matched,
		)
		return Decision{
			RequiresConfirmation: true,
			Reason:               fmt.Sprintf("matched %s keyword %q", verdict.Category, verdict.Matched),
			Risk:                 risk,
		}
	}
	if risk != nil && risk.Dangerous {
		g.logger.Info("classifier flagged action",
			"action", string(action.Type),
			"confidence", risk.Confidence,
			"reason", risk.Reason,
		)
		reason := risk.Reason
		if reason == "" {
			reason = fmt.Sprintf("classifier flagged the action (confidence %.2f)", risk.Confidence)
		}
		return Decision{RequiresConfirmation: true, Reason: reason, Risk: risk}
	}

	return Decision{Allowed: true, Risk: risk}
}
