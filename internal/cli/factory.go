package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/pkg/adapters/memory"
	"github.com/stewardhq/steward/pkg/adapters/ollama"
	redisadapter "github.com/stewardhq/steward/pkg/adapters/redis"
	"github.com/stewardhq/steward/pkg/capabilities/clock"
	"github.com/stewardhq/steward/pkg/capabilities/notes"
	"github.com/stewardhq/steward/pkg/observability"
	"github.com/stewardhq/steward/pkg/persistence/middleware"
	"github.com/stewardhq/steward/pkg/ports"
)

// BuildAssistant assembles an Assistant from configuration. The built-in
// capability modules are always registered; platform integrations (screen
// provider, action performer) are left to the caller.
func BuildAssistant(cfg config.Config, logger *slog.Logger, metrics *observability.Metrics) (*steward.Assistant, error) {
	opts := []steward.Option{
		steward.WithLogger(logger),
		steward.WithMaxIterations(cfg.Pipeline.MaxIterations),
		steward.WithCallTimeout(cfg.Pipeline.CallTimeout.Std()),
		steward.WithKeywords(cfg.Safety.Keywords),
	}

	if cfg.Inference.Endpoint != "" && cfg.Inference.Model != "" {
		opts = append(opts, steward.WithInference(ollama.New(
			cfg.Inference.Endpoint,
			cfg.Inference.Model,
			ollama.WithTemperature(cfg.Inference.Temperature),
		)))
	}
	if cfg.Inference.GrammarPath != "" {
		opts = append(opts, steward.WithClassifierGrammar(cfg.Inference.GrammarPath))
	}

	var store ports.StateStore = memory.NewStore()
	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		storeOpts := []redisadapter.Option{}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(cfg.Redis.TTL.Std()))
		}
		store = redisadapter.NewFromClient(client, storeOpts...)
		opts = append(opts, steward.WithLocker(redisadapter.NewLocker(client, "steward:")))
	}

	store, err := wrapStore(store, cfg.Persistence)
	if err != nil {
		return nil, err
	}
	opts = append(opts, steward.WithStore(store))

	if metrics != nil {
		opts = append(opts, steward.WithMetrics(metrics))
	}

	a, err := steward.New(opts...)
	if err != nil {
		return nil, err
	}

	a.RegisterModule(clock.New())
	a.RegisterModule(notes.New())
	return a, nil
}

// wrapStore applies encryption innermost and redaction outermost, so saved
// turns are masked first and encrypted last before hitting the backend.
func wrapStore(store ports.StateStore, cfg config.PersistenceConfig) (ports.StateStore, error) {
	if cfg.EncryptionKey != "" {
		active, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid persistence.encryption_key: %w", err)
		}
		if len(active) != 32 {
			return nil, fmt.Errorf("persistence.encryption_key must decode to 32 bytes, got %d", len(active))
		}
		fallbacks := make([][]byte, 0, len(cfg.FallbackKeys))
		for _, k := range cfg.FallbackKeys {
			decoded, err := base64.StdEncoding.DecodeString(k)
			if err != nil {
				return nil, fmt.Errorf("invalid persistence.fallback_keys entry: %w", err)
			}
			fallbacks = append(fallbacks, decoded)
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})(store)
	}
	if len(cfg.RedactPatterns) > 0 {
		store = middleware.NewRedactMiddleware(cfg.RedactPatterns)(store)
	}
	return store, nil
}
