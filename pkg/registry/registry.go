package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/ports"
)

// Registry holds the capability modules exposed to the orchestration layer.
//
// The module map is mutated only during a startup registration phase and is
// read-mostly afterwards. Registration under an existing id replaces the
// previous module (last write wins).
type Registry struct {
	mu      sync.RWMutex
	modules map[string]ports.CapabilityModule
	perms   ports.PermissionSource
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithPermissionSource sets the source of truth for platform permissions.
// Defaults to granting everything.
func WithPermissionSource(p ports.PermissionSource) Option {
	return func(r *Registry) { r.perms = p }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		modules: make(map[string]ports.CapabilityModule),
		perms:   ports.GrantAll{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts a module by id, replacing any previous registration.
func (r *Registry) Register(module ports.CapabilityModule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module.ID()] = module
	r.logger.Info("capability registered",
		"module", module.ID(),
		"operations", len(module.Operations()),
	)
}

// Get returns a module by id.
func (r *Registry) Get(id string) (ports.CapabilityModule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// Modules returns all registered modules in lexicographic id order.
func (r *Registry) Modules() []ports.CapabilityModule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]ports.CapabilityModule, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.modules[id])
	}
	return out
}

// AvailableModules returns the modules whose availability predicate holds and
// whose required permissions are all currently granted, in id order.
func (r *Registry) AvailableModules(ctx context.Context) []ports.CapabilityModule {
	out := make([]ports.CapabilityModule, 0)
	for _, m := range r.Modules() {
		if !m.IsAvailable(ctx) {
			continue
		}
		if len(r.MissingPermissions(ctx, m)) > 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MissingPermissions returns the module's required permissions that are not
// currently granted.
func (r *Registry) MissingPermissions(ctx context.Context, m ports.CapabilityModule) []string {
	var missing []string
	for _, p := range m.RequiredPermissions() {
		if !r.perms.Granted(ctx, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
