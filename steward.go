package steward

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/graph"
	"github.com/stewardhq/steward/pkg/nodes"
	"github.com/stewardhq/steward/pkg/observability"
	"github.com/stewardhq/steward/pkg/ports"
	"github.com/stewardhq/steward/pkg/registry"
	"github.com/stewardhq/steward/pkg/safety"
	"github.com/stewardhq/steward/pkg/session"

	"github.com/stewardhq/steward/pkg/adapters/memory"
)

// Assistant is the high-level entry point. It wires the capability registry,
// the safety gate and the orchestration graph behind a small API.
type Assistant struct {
	logger   *slog.Logger
	registry *registry.Registry
	router   *registry.Router
	gate     *safety.Gate
	sessions *session.Manager
	metrics  *observability.Metrics

	inference ports.Inference
	performer ports.ActionPerformer
	screen    ports.ScreenProvider

	graph *graph.Graph

	store         ports.StateStore
	locker        ports.DistributedLocker
	permissions   ports.PermissionSource
	keywords      safety.KeywordSets
	grammarPath   string
	maxIterations int
	callTimeout   time.Duration
}

// Option configures the Assistant.
type Option func(*Assistant)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) { a.logger = logger }
}

// WithStore sets the session persistence backend. Defaults to memory.
func WithStore(store ports.StateStore) Option {
	return func(a *Assistant) { a.store = store }
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Assistant) { a.locker = locker }
}

// WithInference sets the language-model backend. Without one the assistant
// still routes plan-free capability calls and UI actions, degrading every
// model-dependent step.
func WithInference(inference ports.Inference) Option {
	return func(a *Assistant) { a.inference = inference }
}

// WithPerformer sets the platform executor for UI actions. Without one,
// allowed actions are recorded but not performed.
func WithPerformer(performer ports.ActionPerformer) Option {
	return func(a *Assistant) { a.performer = performer }
}

// WithScreenProvider sets the source of screen context used when HandleTurn
// is called without one.
func WithScreenProvider(screen ports.ScreenProvider) Option {
	return func(a *Assistant) { a.screen = screen }
}

// WithPermissionSource sets the platform permission oracle. Defaults to
// granting everything.
func WithPermissionSource(p ports.PermissionSource) Option {
	return func(a *Assistant) { a.permissions = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

// WithMaxIterations bounds node visits per turn.
func WithMaxIterations(n int) Option {
	return func(a *Assistant) { a.maxIterations = n }
}

// WithCallTimeout bounds each capability execution.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Assistant) { a.callTimeout = d }
}

// WithKeywords overrides the firewall keyword sets.
func WithKeywords(k safety.KeywordSets) Option {
	return func(a *Assistant) { a.keywords = k }
}

// WithClassifierGrammar sets the grammar file used to constrain risk
// classifier output.
func WithClassifierGrammar(path string) Option {
	return func(a *Assistant) { a.grammarPath = path }
}

// New creates an Assistant.
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		logger:        logging.NewNop(),
		permissions:   ports.GrantAll{},
		keywords:      safety.DefaultKeywordSets(),
		maxIterations: domain.DefaultMaxIterations,
		callTimeout:   registry.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.maxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", a.maxIterations)
	}
	if err := a.keywords.Validate(); err != nil {
		return nil, err
	}

	if a.store == nil {
		a.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}
	a.sessions = session.NewManager(a.store, sessionOpts...)

	a.registry = registry.New(
		registry.WithLogger(a.logger),
		registry.WithPermissionSource(a.permissions),
	)
	routerOpts := []registry.RouterOption{
		registry.WithRouterLogger(a.logger),
		registry.WithCallTimeout(a.callTimeout),
	}
	if a.metrics != nil {
		routerOpts = append(routerOpts, registry.WithCallObserver(a.metrics.ObserveCapability))
	}
	a.router = registry.NewRouter(a.registry, routerOpts...)

	var classifier *safety.Classifier
	if a.inference != nil {
		copts := []safety.ClassifierOption{safety.WithClassifierLogger(a.logger)}
		if a.grammarPath != "" {
			copts = append(copts, safety.WithGrammarPath(a.grammarPath))
		}
		classifier = safety.NewClassifier(a.inference, copts...)
	}
	a.gate = safety.NewGate(safety.NewFirewall(a.keywords), classifier,
		safety.WithGateLogger(a.logger))

	a.graph = a.buildGraph()
	return a, nil
}

func (a *Assistant) buildGraph() *graph.Graph {
	hooks := graph.Hooks{}
	if a.metrics != nil {
		hooks.OnNodeVisit = a.metrics.RecordNodeVisit
	}

	g := graph.New(nodes.NodeIntent,
		graph.WithLogger(a.logger),
		graph.WithHooks(hooks),
	)

	g.AddNode(nodes.NewIntent(a.inference, a.logger))
	g.AddNode(nodes.NewPlan(a.inference, a.logger))
	g.AddNode(nodes.NewToolSelect(a.registry, a.logger))
	g.AddNode(nodes.NewParams(a.inference, a.registry, a.logger))
	g.AddNode(nodes.NewExecute(a.router, a.logger))
	g.AddNode(nodes.NewUIAction(a.gate, a.performer, a.logger))
	g.AddNode(nodes.NewRespond(a.inference, a.logger))

	g.AddEdge(nodes.NodeIntent, nodes.NodePlan)
	g.AddEdge(nodes.NodePlan, nodes.NodeToolSelect)
	g.AddEdge(nodes.NodeToolSelect, nodes.NodeParams)
	g.AddEdge(nodes.NodeParams, nodes.NodeExecute)
	g.AddEdge(nodes.NodeExecute, nodes.NodeUIAction)
	g.AddEdge(nodes.NodeUIAction, nodes.NodeRespond)
	// Multi-step plans loop back for the next step; Respond breaks the cycle
	// by completing the turn in every other case.
	g.AddEdge(nodes.NodeRespond, nodes.NodeToolSelect)

	return g
}

// RegisterModule adds a capability module to the registry.
func (a *Assistant) RegisterModule(m ports.CapabilityModule) {
	a.registry.Register(m)
}

// Registry exposes the capability registry, e.g. for serving schemas.
func (a *Assistant) Registry() *registry.Registry { return a.registry }

// Router exposes the capability router, e.g. for alternate transports.
func (a *Assistant) Router() *registry.Router { return a.router }

// Schema renders the human-readable capability schema for prompts.
func (a *Assistant) Schema(ctx context.Context) string {
	return a.registry.GenerateSchema(ctx)
}

// HandleTurn runs one request through the pipeline. An empty sessionID starts
// a fresh session with a generated ID. An empty screenContext is filled from
// the configured ScreenProvider when one is present.
//
// A pending confirmation from an earlier turn is discarded: a new request
// supersedes the withheld action. Use Confirm to resolve it instead.
func (a *Assistant) HandleTurn(ctx context.Context, sessionID, userText, screenContext string) (*domain.TurnState, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sourcePackage := ""
	if screenContext == "" && a.screen != nil {
		text, pkg, err := a.screen.ScreenContext(ctx)
		if err != nil {
			a.logger.Warn("screen context unavailable", "err", err)
		} else {
			screenContext, sourcePackage = text, pkg
		}
	}

	state, err := a.sessions.LoadOrStart(ctx, sessionID, userText, screenContext)
	if err != nil {
		return nil, err
	}
	if state.PendingConfirmation != nil {
		a.logger.Info("discarding superseded confirmation", "session_id", sessionID)
		a.recordConfirmation("superseded")
		state.PendingConfirmation = nil
	}
	state.SourcePackage = sourcePackage
	state.MaxIterations = a.maxIterations

	final := a.graph.Invoke(ctx, state)
	if final.Response == "" && final.Err != "" {
		final = final.Clone()
		final.Response = "Sorry, something went wrong: " + final.Err
	}

	a.recordTurn(final)

	if err := a.sessions.Save(ctx, sessionID, final); err != nil {
		return final, fmt.Errorf("failed to persist session: %w", err)
	}
	return final, nil
}

// Confirm resolves the pending confirmation on a session. When approved, the
// withheld work is dispatched exactly once; the safety gate is not consulted
// again for it. When declined, the pending action is discarded.
func (a *Assistant) Confirm(ctx context.Context, sessionID string, approved bool) (*domain.TurnState, error) {
	state, err := a.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pending := state.PendingConfirmation
	if pending == nil {
		return nil, domain.ErrNoPendingAction
	}

	next := state.Clone()
	next.PendingConfirmation = nil

	if !approved {
		a.recordConfirmation("declined")
		next.Response = "Okay, I won't do that."
		if err := a.sessions.Save(ctx, sessionID, next); err != nil {
			return next, fmt.Errorf("failed to persist session: %w", err)
		}
		return next, nil
	}

	a.recordConfirmation("approved")

	if pending.Call != "" {
		params := make(map[string]any, len(pending.Params)+1)
		for k, v := range pending.Params {
			params[k] = v
		}
		// The module asked for this confirmation; the flag tells it the user
		// has already approved.
		params["confirmed"] = true

		resp := a.router.Execute(ctx, pending.Call, params)
		next.Results = append(next.Results, resp)
		next.Response = domain.Describe(resp)
	} else {
		if a.performer != nil {
			if err := a.performer.Perform(ctx, pending.Action); err != nil {
				next.Response = "I couldn't complete that action: " + err.Error()
				if saveErr := a.sessions.Save(ctx, sessionID, next); saveErr != nil {
					return next, fmt.Errorf("failed to persist session: %w", saveErr)
				}
				return next, nil
			}
		}
		next.Response = "Done."
	}

	if err := a.sessions.Save(ctx, sessionID, next); err != nil {
		return next, fmt.Errorf("failed to persist session: %w", err)
	}
	return next, nil
}

// DeleteSession removes a session and any pending confirmation with it.
func (a *Assistant) DeleteSession(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

func (a *Assistant) recordTurn(state *domain.TurnState) {
	if a.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case state.Err != "":
		outcome = "error"
	case state.PendingConfirmation != nil:
		outcome = "confirmation"
		a.recordConfirmation("requested")
	case state.NeedsClarification:
		outcome = "clarification"
	}
	a.metrics.RecordTurn(outcome)
}

func (a *Assistant) recordConfirmation(resolution string) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordConfirmation(resolution)
}
