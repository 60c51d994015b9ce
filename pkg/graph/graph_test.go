package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/stewardhq/steward/pkg/domain"
)

func passthrough(name string) Node {
	return NodeFunc{ID: name, Fn: func(ctx context.Context, state *domain.TurnState) *domain.TurnState {
		return state.Clone()
	}}
}

func newState() *domain.TurnState {
	s := domain.NewTurnState("s1", "hello", "")
	s.MaxIterations = 10
	return s
}

func TestInvoke_LinearChain(t *testing.T) {
	g := New("a")
	g.AddNode(passthrough("a")).AddNode(passthrough("b"))
	g.AddEdge("a", "b").AddEdge("b", End)

	final := g.Invoke(context.Background(), newState())

	if !final.Completed {
		t.Fatal("Invoke must always complete the turn")
	}
	if final.Err != "" {
		t.Fatalf("unexpected error: %q", final.Err)
	}
	if got := strings.Join(final.History, ","); got != "a,b" {
		t.Errorf("History = %q, want a,b", got)
	}
	if final.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", final.Iterations)
	}
	if len(final.History) != final.Iterations {
		t.Errorf("len(History) = %d, Iterations = %d; must match", len(final.History), final.Iterations)
	}
}

func TestInvoke_MissingNode(t *testing.T) {
	g := New("a")
	g.AddNode(passthrough("a"))
	g.AddEdge("a", "c") // c is never registered

	final := g.Invoke(context.Background(), newState())

	if !final.Completed {
		t.Fatal("structural errors must still complete the turn")
	}
	if final.Err != "Node not found: c" {
		t.Errorf("Err = %q, want %q", final.Err, "Node not found: c")
	}
}

func TestInvoke_MissingEdge(t *testing.T) {
	g := New("a")
	g.AddNode(passthrough("a"))

	final := g.Invoke(context.Background(), newState())

	if final.Err != "No edge from node: a" {
		t.Errorf("Err = %q, want %q", final.Err, "No edge from node: a")
	}
}

func TestInvoke_IterationCeiling(t *testing.T) {
	g := New("a")
	g.AddNode(passthrough("a"))
	g.AddEdge("a", "a") // deliberate self-loop

	state := newState()
	state.MaxIterations = 2

	final := g.Invoke(context.Background(), state)

	if !final.Completed {
		t.Fatal("turn must complete at the ceiling")
	}
	if final.Err != "Max iterations exceeded" {
		t.Errorf("Err = %q, want %q", final.Err, "Max iterations exceeded")
	}
	if final.Iterations != 2 {
		t.Errorf("Iterations = %d, want exactly 2", final.Iterations)
	}
}

func TestInvoke_NodeCompletesTurn(t *testing.T) {
	g := New("a")
	g.AddNode(NodeFunc{ID: "a", Fn: func(ctx context.Context, state *domain.TurnState) *domain.TurnState {
		next := state.Clone()
		next.Completed = true
		next.Response = "done early"
		return next
	}})
	g.AddNode(passthrough("b"))
	g.AddEdge("a", "b").AddEdge("b", End)

	final := g.Invoke(context.Background(), newState())

	if final.Response != "done early" {
		t.Errorf("Response = %q", final.Response)
	}
	if len(final.History) != 1 {
		t.Errorf("no node may run after completion, History = %v", final.History)
	}
}

func TestInvoke_InputStateNotMutated(t *testing.T) {
	g := New("a")
	g.AddNode(NodeFunc{ID: "a", Fn: func(ctx context.Context, state *domain.TurnState) *domain.TurnState {
		next := state.Clone()
		next.Intent = domain.IntentCheckTime
		return next
	}})
	g.AddEdge("a", End)

	initial := newState()
	final := g.Invoke(context.Background(), initial)

	if initial.Intent != domain.IntentUnknown {
		t.Errorf("initial state was mutated: Intent = %q", initial.Intent)
	}
	if final.Intent != domain.IntentCheckTime {
		t.Errorf("final.Intent = %q", final.Intent)
	}
}

func TestInvoke_Hooks(t *testing.T) {
	var visits []string
	completed := false

	g := New("a", WithHooks(Hooks{
		OnNodeVisit: func(name string) { visits = append(visits, name) },
		OnComplete:  func(state *domain.TurnState) { completed = true },
	}))
	g.AddNode(passthrough("a")).AddNode(passthrough("b"))
	g.AddEdge("a", "b").AddEdge("b", End)

	g.Invoke(context.Background(), newState())

	if strings.Join(visits, ",") != "a,b" {
		t.Errorf("visits = %v", visits)
	}
	if !completed {
		t.Error("OnComplete did not fire")
	}
}
