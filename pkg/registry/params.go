package registry

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/stewardhq/steward/pkg/domain"
)

// ValidateParams checks params against the operation's declared specs,
// applying defaults for absent optional parameters. It returns the normalized
// parameter map (canonical JSON scalar types) or a validation error naming
// the offending parameter.
func ValidateParams(op domain.Operation, params map[string]any) (map[string]any, error) {
	normalized, err := normalizeJSON(params)
	if err != nil {
		return nil, fmt.Errorf("parameters are not JSON-representable: %w", err)
	}
	if normalized == nil {
		normalized = map[string]any{}
	}

	for _, spec := range op.Params {
		val, present := normalized[spec.Name]
		if !present {
			if spec.Required {
				return nil, fmt.Errorf("missing required parameter %q", spec.Name)
			}
			if spec.Default != nil {
				normalized[spec.Name] = spec.Default
			}
			continue
		}
		if err := paramSchema(spec).VisitJSON(val); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", spec.Name, err)
		}
	}
	return normalized, nil
}

// paramSchema maps a ParamSpec to an OpenAPI schema. Semantic string types
// (date, time, datetime, duration) carry a format for documentation; format
// conformance is the module's concern.
func paramSchema(spec domain.ParamSpec) *openapi3.Schema {
	var s *openapi3.Schema
	switch spec.Type {
	case domain.ParamInteger:
		s = openapi3.NewIntegerSchema()
	case domain.ParamFloat:
		s = openapi3.NewFloat64Schema()
	case domain.ParamBoolean:
		s = openapi3.NewBoolSchema()
	case domain.ParamArray:
		s = openapi3.NewArraySchema()
	case domain.ParamObject:
		s = openapi3.NewObjectSchema()
	case domain.ParamDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	case domain.ParamTime:
		s = openapi3.NewStringSchema().WithFormat("time")
	case domain.ParamDateTime:
		s = openapi3.NewStringSchema().WithFormat("date-time")
	case domain.ParamDuration:
		s = openapi3.NewStringSchema().WithFormat("duration")
	default:
		s = openapi3.NewStringSchema()
	}
	if len(spec.Enum) > 0 {
		vals := make([]any, len(spec.Enum))
		for i, v := range spec.Enum {
			vals[i] = v
		}
		s = s.WithEnum(vals...)
	}
	return s
}

// normalizeJSON round-trips a value through JSON so validation sees canonical
// types (float64 numbers, []any, map[string]any).
func normalizeJSON(params map[string]any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
