// Package graph runs the orchestration state machine: a registered map of
// named nodes, a directed edge map, and an invoke loop over immutable
// TurnState snapshots. Termination is total: every invocation ends with the
// completion flag set, whether through the terminal sentinel, a node's own
// completion, or a structural/iteration error folded into the state.
package graph

import (
	"context"
	"log/slog"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
)

// End is the terminal edge sentinel. An edge pointing at End completes the
// turn. The name is reserved; no node may register under it.
const End = "__end__"

// Node is a named transformation from one TurnState to the next. Nodes must
// not mutate the state they receive; they return a clone with fields
// overridden.
type Node interface {
	Name() string
	Process(ctx context.Context, state *domain.TurnState) *domain.TurnState
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc struct {
	ID string
	Fn func(ctx context.Context, state *domain.TurnState) *domain.TurnState
}

func (n NodeFunc) Name() string { return n.ID }

func (n NodeFunc) Process(ctx context.Context, state *domain.TurnState) *domain.TurnState {
	return n.Fn(ctx, state)
}

// Hooks are optional observation points on the execution loop.
type Hooks struct {
	// OnNodeVisit fires after a node ran, with the node's name.
	OnNodeVisit func(name string)
	// OnComplete fires once per invocation with the final state.
	OnComplete func(state *domain.TurnState)
}

// Graph is the compiled state machine. Construct with New, register nodes and
// edges, then Invoke per turn. A Graph is immutable during Invoke and safe
// for concurrent turns; each turn owns its state snapshots exclusively.
type Graph struct {
	entry  string
	nodes  map[string]Node
	edges  map[string]string
	hooks  Hooks
	logger *slog.Logger
}

// Option configures the Graph.
type Option func(*Graph)

// WithLogger sets the graph logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) { g.logger = logger }
}

// WithHooks registers execution observation hooks.
func WithHooks(hooks Hooks) Option {
	return func(g *Graph) { g.hooks = hooks }
}

// New creates a graph with the given entry node name.
func New(entry string, opts ...Option) *Graph {
	g := &Graph{
		entry:  entry,
		nodes:  make(map[string]Node),
		edges:  make(map[string]string),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode registers a node under its name. Last write wins.
func (g *Graph) AddNode(n Node) *Graph {
	g.nodes[n.Name()] = n
	return g
}

// AddEdge sets the successor of a node. Use End to terminate.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// Invoke drives the state machine from the entry node to a terminal state.
//
// The loop mirrors the contract exactly: a missing node or edge is a
// structural error that completes the turn with a populated error; a node
// may complete the turn itself; the iteration ceiling bounds total node
// visits. Invoke always returns a state with Completed set.
func (g *Graph) Invoke(ctx context.Context, initial *domain.TurnState) *domain.TurnState {
	state := initial
	current := g.entry

	for {
		if state.Halted() {
			break
		}
		if state.MaxIterations > 0 && state.Iterations >= state.MaxIterations {
			state = g.fail(state, "Max iterations exceeded")
			break
		}

		node, ok := g.nodes[current]
		if !ok {
			state = g.fail(state, "Node not found: "+current)
			break
		}

		next := node.Process(ctx, state)
		if next == nil {
			// A node returning nothing is a programming error; treat it as
			// structural rather than crashing the turn.
			state = g.fail(state, "Node returned no state: "+current)
			break
		}
		next.CurrentNode = current
		next.History = append(next.History, current)
		next.Iterations++
		state = next

		if g.hooks.OnNodeVisit != nil {
			g.hooks.OnNodeVisit(current)
		}
		g.logger.Debug("node visited", "node", current, "iteration", state.Iterations)

		if state.Halted() {
			break
		}

		target, ok := g.edges[current]
		if !ok {
			state = g.fail(state, "No edge from node: "+current)
			break
		}
		if target == End {
			state = state.Clone()
			state.Completed = true
			break
		}
		current = target
	}

	if !state.Completed {
		state = state.Clone()
		state.Completed = true
	}
	if g.hooks.OnComplete != nil {
		g.hooks.OnComplete(state)
	}
	return state
}

func (g *Graph) fail(state *domain.TurnState, msg string) *domain.TurnState {
	g.logger.Warn("turn failed structurally", "err", msg, "node", state.CurrentNode)
	next := state.Clone()
	next.Err = msg
	next.Completed = true
	return next
}
