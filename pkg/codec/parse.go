package codec

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/stewardhq/steward/pkg/domain"
)

// ToolCall is a capability invocation decoded from model output.
type ToolCall struct {
	// Call is "module.operation" or a bare operation id.
	Call   string         `json:"call" mapstructure:"call"`
	Params map[string]any `json:"params" mapstructure:"params"`
}

// ParseObject converts model free text into a generic JSON object.
//
// Three attempts, in order: direct parse; Repair then parse; balanced-object
// extraction then Repair then parse. Any remaining failure yields nil. Callers
// must treat nil as "no actionable output", never as a fatal error.
func ParseObject(text string) map[string]any {
	if m := tryUnmarshal(text); m != nil {
		return m
	}
	if m := tryUnmarshal(Repair(text)); m != nil {
		return m
	}
	if obj, ok := ExtractBalancedObject(text); ok {
		if m := tryUnmarshal(Repair(obj)); m != nil {
			return m
		}
	}
	return nil
}

// ParseAction converts model free text into a typed Action, or nil when the
// text carries none. The action type is normalized to upper case; structural
// validity (required fields per type) is the safety gate's concern, not the
// codec's.
func ParseAction(text string) *domain.Action {
	m := ParseObject(text)
	if m == nil {
		return nil
	}
	if _, ok := m["action"]; !ok {
		// Tolerate the occasional "type" key the model swaps in.
		if v, ok := m["type"]; ok {
			m["action"] = v
		} else {
			return nil
		}
	}
	var a domain.Action
	if err := weakDecode(m, &a); err != nil {
		return nil
	}
	a.Type = domain.ActionType(strings.ToUpper(strings.TrimSpace(string(a.Type))))
	if a.Type == "" {
		return nil
	}
	return &a
}

// ParseToolCall converts model free text into a capability call, or nil.
func ParseToolCall(text string) *ToolCall {
	m := ParseObject(text)
	if m == nil {
		return nil
	}
	if _, ok := m["call"]; !ok {
		if v, ok := m["tool"]; ok {
			m["call"] = v
		} else {
			return nil
		}
	}
	var tc ToolCall
	if err := weakDecode(m, &tc); err != nil || tc.Call == "" {
		return nil
	}
	if tc.Params == nil {
		tc.Params = map[string]any{}
	}
	return &tc
}

// ParseRisk converts classifier output into a RiskAssessment, or nil when the
// output carries no verdict.
func ParseRisk(text string) *domain.RiskAssessment {
	m := ParseObject(text)
	if m == nil {
		return nil
	}
	if _, ok := m["dangerous"]; !ok {
		return nil
	}
	var r domain.RiskAssessment
	if err := weakDecode(m, &r); err != nil {
		return nil
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	return &r
}

func tryUnmarshal(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed[0] != '{' {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return nil
	}
	return m
}

// weakDecode maps a loose JSON object onto a typed value, coercing scalar
// types the way model output tends to need (numbers as strings, "true"/"false"
// strings as booleans).
func weakDecode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
