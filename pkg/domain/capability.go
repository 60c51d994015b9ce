package domain

// ParamType is the semantic type of an operation parameter.
type ParamType string

const (
	ParamString   ParamType = "string"
	ParamInteger  ParamType = "integer"
	ParamFloat    ParamType = "float"
	ParamBoolean  ParamType = "boolean"
	ParamDate     ParamType = "date"
	ParamTime     ParamType = "time"
	ParamDateTime ParamType = "datetime"
	ParamDuration ParamType = "duration"
	ParamArray    ParamType = "array"
	ParamObject   ParamType = "object"
)

// ParamSpec declares one parameter of an Operation.
type ParamSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Type        ParamType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	// Enum constrains string parameters to a fixed set of values.
	Enum []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	// Default is applied when the parameter is absent and not required.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`
}

// Operation is one callable unit within a capability module.
type Operation struct {
	ID          string      `json:"id" yaml:"id"`
	Description string      `json:"description" yaml:"description"`
	Params      []ParamSpec `json:"params,omitempty" yaml:"params,omitempty"`
	// Examples are worked input/output examples used to steer the model's
	// output format when the operation appears in the generated schema.
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Param returns the spec with the given name, if declared.
func (o Operation) Param(name string) (ParamSpec, bool) {
	for _, p := range o.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}
