package tool

// Parameter types a tool may declare
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Parameter declares a single named tool argument
type Parameter struct {
	// Name is unique within a tool
	Name string `json:"name"`

	// Type is one of the declared type tags (string, integer, number,
	// boolean, array, object)
	Type string `json:"type"`

	// Description is shown to the model
	Description string `json:"description"`

	// Required parameters must not carry a default
	Required bool `json:"required,omitempty"`

	// Default is injected when the caller omits the parameter
	Default interface{} `json:"default,omitempty"`

	// Enum restricts the accepted values when present
	Enum []interface{} `json:"enum,omitempty"`
}

// Spec describes a tool: its name, what it does, and the parameters it
// accepts. Immutable once constructed.
type Spec struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Parameters  []Parameter              `json:"parameters,omitempty"`
	Returns     map[string]interface{}   `json:"returns,omitempty"`
	Examples    []map[string]interface{} `json:"examples,omitempty"`
}

// WireFormat projects the spec into the object-schema shape presented to
// the model: {name, description, input_schema:{type, properties, required}}.
func (s *Spec) WireFormat() map[string]interface{} {
	properties := map[string]interface{}{}
	required := []string{}

	for _, p := range s.Parameters {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]interface{}{
		"name":        s.Name,
		"description": s.Description,
		"input_schema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
