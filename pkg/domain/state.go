package domain

// TurnState is the snapshot threaded through the orchestration graph for one
// user request.
//
// TurnState is immutable per node visit: a node produces its successor with
// Clone and field overrides, never by mutating the value it received. This
// keeps node composition referentially transparent and each node testable in
// isolation.
//
// Invariants maintained by the graph:
//   - len(History) == Iterations
//   - once Completed is true or Err is non-empty, no node runs again
//   - Iterations increases by exactly one per node visit and never exceeds
//     MaxIterations
type TurnState struct {
	SessionID     string `json:"session_id"`
	UserText      string `json:"user_text"`
	ScreenContext string `json:"screen_context,omitempty"`
	// SourcePackage identifies the foreground app the screen context came
	// from; it is forwarded to the semantic risk classifier.
	SourcePackage string `json:"source_package,omitempty"`

	Intent   Intent            `json:"intent,omitempty"`
	Entities map[string]string `json:"entities,omitempty"`

	// SelectedCapability is a fully qualified "module.operation" call id,
	// empty when the turn resolves to a direct UI action instead.
	SelectedCapability string         `json:"selected_capability,omitempty"`
	Params             map[string]any `json:"params,omitempty"`

	// Results accumulates capability responses in call order. Append-only.
	Results []Response `json:"-"`

	CandidateAction     *Action        `json:"candidate_action,omitempty"`
	PendingConfirmation *PendingAction `json:"pending_confirmation,omitempty"`

	Response string `json:"response,omitempty"`
	// Err is fatal: once set, no node runs again and the turn completes.
	Err string `json:"error,omitempty"`
	// LastFault is an explanatory, non-fatal diagnostic from a node that
	// recovered (a parse miss, a failed model call). It feeds the response
	// phrasing but never halts the graph.
	LastFault string `json:"last_fault,omitempty"`

	CurrentNode   string   `json:"current_node,omitempty"`
	History       []string `json:"history,omitempty"`
	Iterations    int      `json:"iterations"`
	MaxIterations int      `json:"max_iterations"`

	Completed          bool `json:"completed"`
	NeedsClarification bool `json:"needs_clarification,omitempty"`

	Plan *Plan `json:"plan,omitempty"`
}

// DefaultMaxIterations bounds total node visits per turn when no explicit
// ceiling is configured.
const DefaultMaxIterations = 20

// NewTurnState creates the initial snapshot for one request.
func NewTurnState(sessionID, userText, screenContext string) *TurnState {
	return &TurnState{
		SessionID:     sessionID,
		UserText:      userText,
		ScreenContext: screenContext,
		Intent:        IntentUnknown,
		MaxIterations: DefaultMaxIterations,
	}
}

// Clone returns a copy safe for independent mutation. Maps and slices are
// copied; Response values are immutable by convention and shared.
func (s *TurnState) Clone() *TurnState {
	if s == nil {
		return nil
	}
	next := *s
	if s.Entities != nil {
		next.Entities = make(map[string]string, len(s.Entities))
		for k, v := range s.Entities {
			next.Entities[k] = v
		}
	}
	if s.Params != nil {
		next.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			next.Params[k] = v
		}
	}
	if s.Results != nil {
		next.Results = append([]Response(nil), s.Results...)
	}
	if s.History != nil {
		next.History = append([]string(nil), s.History...)
	}
	if s.CandidateAction != nil {
		a := *s.CandidateAction
		next.CandidateAction = &a
	}
	if s.PendingConfirmation != nil {
		p := *s.PendingConfirmation
		next.PendingConfirmation = &p
	}
	if s.Plan != nil {
		p := *s.Plan
		p.Steps = append([]PlanStep(nil), s.Plan.Steps...)
		next.Plan = &p
	}
	return &next
}

// LastResult returns the most recent capability response, if any.
func (s *TurnState) LastResult() (Response, bool) {
	if len(s.Results) == 0 {
		return nil, false
	}
	return s.Results[len(s.Results)-1], true
}

// Halted reports whether the turn may not visit another node.
func (s *TurnState) Halted() bool {
	return s.Completed || s.Err != ""
}
