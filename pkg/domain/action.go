package domain

// ActionType identifies a kind of direct UI action.
//
// Every consumer that makes a safety decision over an Action must switch over
// all of these values without a default branch, so that adding a new action
// type forces each decision point to be revisited.
type ActionType string

const (
	ActionClick    ActionType = "CLICK"
	ActionTypeText ActionType = "TYPE"
	ActionScroll   ActionType = "SCROLL"
	ActionHome     ActionType = "HOME"
	ActionBack     ActionType = "BACK"
	ActionWait     ActionType = "WAIT"
	ActionNone     ActionType = "NONE"
)

// KnownActionTypes lists every defined ActionType.
var KnownActionTypes = []ActionType{
	ActionClick, ActionTypeText, ActionScroll, ActionHome, ActionBack, ActionWait, ActionNone,
}

// Known reports whether t is one of the defined action types.
func (t ActionType) Known() bool {
	for _, k := range KnownActionTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Action is a direct UI action synthesized from model output or extracted
// entities. Which fields are meaningful depends on Type: CLICK uses Target,
// TYPE uses Text, SCROLL uses Direction. The JSON field names match the
// protocol the model is prompted to emit.
type Action struct {
	Type      ActionType `json:"action" mapstructure:"action"`
	Target    string     `json:"target,omitempty" mapstructure:"target"`
	Text      string     `json:"text,omitempty" mapstructure:"text"`
	Direction string     `json:"direction,omitempty" mapstructure:"direction"`
}

// PendingAction is an action withheld by the safety gate, waiting for an
// out-of-band approval signal.
type PendingAction struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	// Call is set when the withheld work is a capability call rather than a
	// direct UI action.
	Call   string         `json:"call,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}
