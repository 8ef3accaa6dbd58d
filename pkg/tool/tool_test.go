package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corenetops/devops-agent/pkg/logging"
)

func TestInvokeStampsDuration(t *testing.T) {
	fn := NewFunc("echo", "Echoes its input", []Parameter{
		{Name: "text", Type: TypeString, Required: true},
	}, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"text": params["text"]}, nil
	})

	result := Invoke(context.Background(), logging.Noop(), fn, map[string]interface{}{"text": "hello"})

	require.True(t, result.Success)
	assert.Equal(t, "hello", result.Data["text"])
	assert.GreaterOrEqual(t, result.DurationMs, 0.0)
	assert.False(t, result.Timestamp.IsZero())
}

func TestInvokeValidationFailureShortCircuits(t *testing.T) {
	executed := false
	fn := NewFunc("strict", "Requires a parameter", []Parameter{
		{Name: "name", Type: TypeString, Required: true},
	}, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		executed = true
		return nil, nil
	})

	result := Invoke(context.Background(), logging.Noop(), fn, map[string]interface{}{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "name")
	assert.False(t, executed, "execute must not run after validation failure")
}

func TestInvokeNeverPropagatesErrors(t *testing.T) {
	fn := NewFunc("failing", "Always fails", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, errors.New("backend unavailable")
		})

	for _, params := range []map[string]interface{}{
		nil,
		{},
		{"unexpected": []int{1, 2, 3}},
	} {
		result := Invoke(context.Background(), logging.Noop(), fn, params)
		require.False(t, result.Success)
		assert.Equal(t, "backend unavailable", result.Error)
		assert.GreaterOrEqual(t, result.DurationMs, 0.0)
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	fn := NewFunc("panicky", "Panics", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			panic("boom")
		})

	result := Invoke(context.Background(), logging.Noop(), fn, map[string]interface{}{})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
	assert.GreaterOrEqual(t, result.DurationMs, 0.0)
}

func TestFuncCoercesReturnValues(t *testing.T) {
	ctx := context.Background()

	// An explicit *Result passes through unchanged
	explicit := NewFunc("explicit", "", nil, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return Errorf("domain failure"), nil
	})
	result, err := explicit.Execute(ctx, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "domain failure", result.Error)

	// A map becomes success data
	mapped := NewFunc("mapped", "", nil, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"count": 3}, nil
	})
	result, err = mapped.Execute(ctx, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Data["count"])

	// Any other value is wrapped under "result"
	scalar := NewFunc("scalar", "", nil, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return 42, nil
	})
	result, err = scalar.Execute(ctx, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 42, result.Data["result"])
}

func TestBaseHealthTransitions(t *testing.T) {
	ctx := context.Background()
	fn := NewFunc("health", "Health test tool", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, nil
		})

	h := fn.Health(ctx)
	assert.Equal(t, StatusNotInitialized, h.Status)
	assert.Equal(t, "health", h.Tool)

	require.NoError(t, fn.Initialize(ctx))
	h = fn.Health(ctx)
	assert.Equal(t, StatusHealthy, h.Status)
	assert.False(t, h.Timestamp.IsZero())
}

func TestSpecWireFormat(t *testing.T) {
	spec := sampleSpec()
	wire := spec.WireFormat()

	assert.Equal(t, "sample", wire["name"])

	schema, ok := wire["input_schema"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"a"}, schema["required"])

	properties, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)

	b, ok := properties["b"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, TypeInteger, b["type"])
	assert.Equal(t, 5, b["default"])
}

func TestResultToMap(t *testing.T) {
	r := NewResult(map[string]interface{}{"count": 3})
	r.DurationMs = 1.5

	m := r.ToMap()
	assert.Equal(t, true, m["success"])
	assert.Equal(t, map[string]interface{}{"count": 3}, m["data"])
	assert.Equal(t, 1.5, m["execution_time_ms"])
	assert.NotContains(t, m, "error")

	m = Errorf("nope").ToMap()
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "nope", m["error"])
}
