package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/ports"
)

// DefaultCallTimeout bounds a single capability invocation.
const DefaultCallTimeout = 30 * time.Second

// Router dispatches capability calls against a Registry.
//
// Execute calls on one Router are serialized by a mutex so that availability
// and permission reads during a call observe a consistent registration
// snapshot. This is a correctness property, not a performance optimization.
type Router struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	observe  func(call string, elapsed time.Duration)

	mu sync.Mutex
}

// RouterOption configures the Router.
type RouterOption func(*Router)

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

// WithRouterLogger sets the router logger.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithCallObserver registers a callback that receives the duration of every
// executed call, for metrics.
func WithCallObserver(observe func(call string, elapsed time.Duration)) RouterOption {
	return func(r *Router) { r.observe = observe }
}

// NewRouter creates a Router over the given registry.
func NewRouter(reg *Registry, opts ...RouterOption) *Router {
	r := &Router{
		registry: reg,
		timeout:  DefaultCallTimeout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute resolves and invokes a capability call.
//
// The call is either fully qualified ("module.operation", split on the first
// dot) or a bare operation id. Bare ids are resolved by scanning modules in
// lexicographic module-id order and taking the first module that declares the
// operation; this order is a documented contract, and fully qualified calls
// remain the preferred form (they are what the generated schema teaches the
// model to emit).
func (r *Router) Execute(ctx context.Context, call string, params map[string]any) domain.Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	moduleID, opID, found := strings.Cut(call, ".")
	if !found {
		opID = call
		moduleID = ""
		for _, m := range r.registry.Modules() {
			if _, ok := findOperation(m, opID); ok {
				moduleID = m.ID()
				break
			}
		}
		if moduleID == "" {
			return domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("no module exposes operation %q", opID)}
		}
	}

	module, ok := r.registry.Get(moduleID)
	if !ok {
		return domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("unknown module %q", moduleID)}
	}
	if missing := r.registry.MissingPermissions(ctx, module); len(missing) > 0 {
		return domain.PermissionRequired{Missing: missing}
	}
	if !module.IsAvailable(ctx) {
		return domain.Error{Code: domain.CodeNotAvailable, Message: fmt.Sprintf("module %q is not available", moduleID)}
	}

	op, ok := findOperation(module, opID)
	if !ok {
		return domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("module %q has no operation %q", moduleID, opID)}
	}

	normalized, err := ValidateParams(op, params)
	if err != nil {
		return domain.Error{Code: domain.CodeInvalidParams, Message: err.Error()}
	}

	r.logger.Debug("dispatching capability call", "call", moduleID+"."+opID)
	if r.observe != nil {
		started := time.Now()
		defer func() {
			r.observe(moduleID+"."+opID, time.Since(started))
		}()
	}
	return r.invoke(ctx, module, opID, normalized)
}

// invoke runs the operation under the call timeout. A call that outlives the
// timeout is abandoned from the caller's perspective; the module itself is
// responsible for being safely abandon-able.
func (r *Router) invoke(ctx context.Context, module ports.CapabilityModule, opID string, params map[string]any) domain.Response {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan domain.Response, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- domain.Error{Code: domain.CodeSystemError, Message: fmt.Sprintf("capability fault: %v", rec)}
			}
		}()
		done <- module.Execute(callCtx, opID, params)
	}()

	select {
	case resp := <-done:
		if resp == nil {
			return domain.Error{Code: domain.CodeSystemError, Message: "capability returned no response"}
		}
		return resp
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return domain.Error{Code: domain.CodeCancelled, Message: ctx.Err().Error()}
		}
		return domain.Error{Code: domain.CodeTimeout, Message: fmt.Sprintf("call to %s.%s exceeded %s", module.ID(), opID, r.timeout)}
	}
}

func findOperation(m ports.CapabilityModule, opID string) (domain.Operation, bool) {
	for _, op := range m.Operations() {
		if op.ID == opID {
			return op, true
		}
	}
	return domain.Operation{}, false
}
