package domain

// PlanStep is one unit of a multi-step request.
type PlanStep struct {
	Description string   `json:"description" mapstructure:"description"`
	Intent      Intent   `json:"intent" mapstructure:"intent"`
	Entities    []string `json:"entities,omitempty" mapstructure:"entities"`
	// Call optionally names a fully qualified capability call
	// ("module.operation") to dispatch directly for this step.
	Call string `json:"call,omitempty" mapstructure:"call"`
}

// Plan is an ordered sequence of steps created for multi-step requests.
// It is advanced one step per execution-node visit and discarded once done.
type Plan struct {
	Steps   []PlanStep `json:"steps"`
	Current int        `json:"current"`
}

// CurrentStep returns the step at the cursor, if any remain.
func (p *Plan) CurrentStep() (PlanStep, bool) {
	if p == nil || p.Current < 0 || p.Current >= len(p.Steps) {
		return PlanStep{}, false
	}
	return p.Steps[p.Current], true
}

// Advance returns a copy of the plan with the cursor moved past the current
// step. The receiver is not mutated.
func (p *Plan) Advance() *Plan {
	if p == nil {
		return nil
	}
	next := *p
	next.Current++
	return &next
}

// Done reports whether all steps have been consumed.
func (p *Plan) Done() bool {
	return p == nil || p.Current >= len(p.Steps)
}
