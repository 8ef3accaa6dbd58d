package tool

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError reports every schema violation found in a single pass, so
// callers see all problems at once instead of one at a time.
type ValidationError struct {
	Tool       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter validation failed: %s", strings.Join(e.Violations, "; "))
}

// ValidateParameters validates caller-supplied arguments against a tool's
// declared parameter schema. On success it returns exactly the validated
// input parameters plus injected defaults; parameters not declared in the
// spec are silently dropped.
func ValidateParameters(spec *Spec, params map[string]interface{}) (map[string]interface{}, error) {
	validated := map[string]interface{}{}
	var violations []string

	for _, p := range spec.Parameters {
		if p.Required {
			if _, ok := params[p.Name]; !ok {
				violations = append(violations, fmt.Sprintf("missing required parameter: %s", p.Name))
			}
		}
	}

	for _, p := range spec.Parameters {
		value, ok := params[p.Name]
		if !ok {
			if p.Default != nil {
				validated[p.Name] = p.Default
			}
			continue
		}

		if msg := checkType(p, value); msg != "" {
			violations = append(violations, msg)
		}

		if len(p.Enum) > 0 && !enumContains(p.Enum, value) {
			violations = append(violations, fmt.Sprintf("parameter %s must be one of: %v", p.Name, p.Enum))
		}

		validated[p.Name] = value
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Tool: spec.Name, Violations: violations}
	}

	return validated, nil
}

// checkType structurally checks string, integer and boolean values; number,
// array and object are accepted permissively since model-produced JSON is
// loosely shaped.
func checkType(p Parameter, value interface{}) string {
	switch p.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("parameter %s must be a string", p.Name)
		}
	case TypeInteger:
		if !isInteger(value) {
			return fmt.Sprintf("parameter %s must be an integer", p.Name)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("parameter %s must be a boolean", p.Name)
		}
	}
	return ""
}

// isInteger accepts native Go integers plus float64 values holding an
// integral number, since JSON decoding produces float64 for all numbers.
func isInteger(value interface{}) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == float64(int64(v))
	case float32:
		return v == float32(int32(v))
	default:
		return false
	}
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, allowed := range enum {
		if reflect.DeepEqual(allowed, value) {
			return true
		}
		// JSON decoding turns numbers into float64; compare representations
		// so declared integer enums still match.
		if fmt.Sprintf("%v", allowed) == fmt.Sprintf("%v", value) {
			return true
		}
	}
	return false
}
