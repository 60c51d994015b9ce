package ports

import "context"

// Inference is the embedded language-model service. Latency and failure are
// opaque; callers must treat every error as recoverable and degrade to a
// domain value (UNKNOWN intent, nil assessment) rather than aborting a turn.
type Inference interface {
	// Infer produces free text for the given prompt.
	Infer(ctx context.Context, prompt, systemPrompt string) (string, error)

	// InferWithGrammar produces text constrained by the grammar spec at the
	// given path. Implementations that cannot honor an arbitrary grammar may
	// approximate it (e.g. JSON-mode decoding); callers still validate the
	// output through the codec.
	InferWithGrammar(ctx context.Context, prompt, systemPrompt, grammarPath string) (string, error)

	// IsModelReady reports whether the service can take requests right now.
	IsModelReady(ctx context.Context) bool
}
