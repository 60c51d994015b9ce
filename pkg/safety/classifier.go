package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/codec"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

const classifierSystemPrompt = `You are a safety reviewer for a device assistant.
Given a pending device action and the current screen, decide whether executing
it could destroy data, spend money, grant permissions, or send anything off
the device. Answer with JSON only: {"dangerous": bool, "confidence": 0..1, "reason": "..."}`

// screenContextLimit caps how much screen text is sent to the classifier.
const screenContextLimit = 1200

// Classifier asks the inference service for a semantic risk opinion on a
// candidate action.
//
// Every failure mode (model not ready, call error, unparseable output)
// yields nil: "no opinion". Nil is never "safe"; the gate falls back to the
// firewall verdict alone.
type Classifier struct {
	inference   ports.Inference
	grammarPath string
	logger      *slog.Logger
}

// ClassifierOption configures the Classifier.
type ClassifierOption func(*Classifier)

// WithGrammarPath points the classifier at a grammar spec constraining the
// model's output shape.
func WithGrammarPath(path string) ClassifierOption {
	return func(c *Classifier) { c.grammarPath = path }
}

// WithClassifierLogger sets the classifier logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = logger }
}

// NewClassifier creates a classifier over the given inference service, which
// may be nil (the classifier then never has an opinion).
func NewClassifier(inference ports.Inference, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		inference: inference,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assess returns the model's risk opinion on the action, or nil.
func (c *Classifier) Assess(ctx context.Context, action domain.Action, screenContext, sourcePackage string) *domain.RiskAssessment {
	if c.inference == nil || !c.inference.IsModelReady(ctx) {
		return nil
	}

	prompt := c.buildPrompt(action, screenContext, sourcePackage)
	out, err := c.inference.InferWithGrammar(ctx, prompt, classifierSystemPrompt, c.grammarPath)
	if err != nil {
		c.logger.Debug("risk classifier call failed", "err", err)
		return nil
	}

	risk := codec.ParseRisk(out)
	if risk == nil {
		c.logger.Debug("risk classifier output unparseable", "output", out)
	}
	return risk
}

func (c *Classifier) buildPrompt(action domain.Action, screenContext, sourcePackage string) string {
	encoded, _ := json.Marshal(action)
	if len(screenContext) > screenContextLimit {
		screenContext = screenContext[:screenContextLimit]
	}
	return fmt.Sprintf("Pending action: %s\nSource app: %s\nScreen:\n%s",
		encoded, sourcePackage, screenContext)
}
