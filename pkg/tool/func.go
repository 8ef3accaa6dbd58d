package tool

import "context"

// Handler is the function body of a declaratively registered tool. It may
// return a *Result, a map (wrapped as success data), or any other value
// (wrapped as {"result": value}); a returned error becomes a failed Result
// at the Invoke boundary.
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Func adapts a plain function into a Tool. Agents build their tool set in
// their constructors by creating Func entries and registering them, the
// registration-table counterpart of annotation scanning.
type Func struct {
	*Base
	handler Handler
}

// NewFunc creates a tool from a name, description, parameter list and handler
func NewFunc(name, description string, params []Parameter, handler Handler) *Func {
	return &Func{
		Base: NewBase(&Spec{
			Name:        name,
			Description: description,
			Parameters:  params,
		}),
		handler: handler,
	}
}

// WithReturns attaches a declared return shape to the tool spec
func (f *Func) WithReturns(returns map[string]interface{}) *Func {
	f.spec.Returns = returns
	return f
}

// WithExamples attaches usage examples to the tool spec
func (f *Func) WithExamples(examples ...map[string]interface{}) *Func {
	f.spec.Examples = append(f.spec.Examples, examples...)
	return f
}

// Execute runs the handler and coerces its return value into a *Result
func (f *Func) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	value, err := f.handler(ctx, params)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *Result:
		return v, nil
	case map[string]interface{}:
		return NewResult(v), nil
	case nil:
		return NewResult(nil), nil
	default:
		return NewResult(map[string]interface{}{"result": v}), nil
	}
}
