package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corenetops/devops-agent/pkg/guardrails"
	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/memory"
	"github.com/corenetops/devops-agent/pkg/tool"
)

// fakeModel returns scripted responses in order, one per Invoke
type fakeModel struct {
	responses []string
	errs      []error
	requests  []interfaces.ModelRequest
	calls     int
}

func (f *fakeModel) Invoke(ctx context.Context, req interfaces.ModelRequest) (string, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unscripted model call")
}

func (f *fakeModel) ModelID() string { return "fake-model" }

func newTestAgent(t *testing.T, model interfaces.ModelClient, tools ...tool.Tool) *Agent {
	t.Helper()
	a, err := New(
		WithModel(model),
		WithLogger(logging.Noop()),
		WithTools(tools...),
		WithRegion("us-east-1"),
	)
	require.NoError(t, err)
	return a
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New()
	require.Error(t, err)
}

func TestProcessRequestEndToEnd(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"list deployed items","category":"network_functions","tools_needed":["list_items"],"parameters":{"list_items":{"namespace":"core-network"}},"complexity":"low"}`,
			"There are 3 items deployed.",
		},
	}

	var gotParams map[string]interface{}
	listItems := tool.NewFunc("list_items", "List deployed items",
		[]tool.Parameter{{Name: "namespace", Type: tool.TypeString}},
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			gotParams = params
			return map[string]interface{}{"count": 3}, nil
		})

	a := newTestAgent(t, model, listItems)
	before := len(a.ConversationHistory())

	resp := a.ProcessRequest(context.Background(), "what is deployed?", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "There are 3 items deployed.", resp.Content)
	assert.Equal(t, "core-network", gotParams["namespace"])

	require.Contains(t, resp.ToolResults, "list_items")
	toolResult := resp.ToolResults["list_items"].(map[string]interface{})
	assert.Equal(t, true, toolResult["success"])
	assert.Equal(t, map[string]interface{}{"count": 3}, toolResult["data"])

	// the generation prompt carries the tool results
	require.Len(t, model.requests, 2)
	generation := model.requests[1].Messages[0].Content
	assert.Contains(t, generation, "list_items")
	assert.Contains(t, generation, "what is deployed?")

	assert.Equal(t, "fake-model", resp.Metadata["model_id"])
	assert.Equal(t, "us-east-1", resp.Metadata["region"])
	assert.NotEmpty(t, resp.Metadata["request_id"])

	// exactly two new messages: user then assistant
	history := a.ConversationHistory()
	require.Len(t, history, before+2)
	assert.Equal(t, "user", history[len(history)-2]["role"])
	assert.Equal(t, "assistant", history[len(history)-1]["role"])
}

func TestProcessRequestUnknownToolIsNotFatal(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"monitoring","tools_needed":["no_such_tool"],"parameters":{},"complexity":"low"}`,
			"Done.",
		},
	}

	a := newTestAgent(t, model)
	resp := a.ProcessRequest(context.Background(), "run the thing", nil)

	require.True(t, resp.Success)
	toolResult := resp.ToolResults["no_such_tool"].(map[string]interface{})
	assert.Equal(t, false, toolResult["success"])
	assert.Equal(t, "Unknown tool: no_such_tool", toolResult["error"])
}

func TestProcessRequestAnalysisFailureFallsBack(t *testing.T) {
	model := &fakeModel{
		errs:      []error{errors.New("throttled")},
		responses: []string{"", "I could not analyze the request in detail."},
	}

	a := newTestAgent(t, model)
	resp := a.ProcessRequest(context.Background(), "hello", nil)

	require.True(t, resp.Success)
	assert.Empty(t, resp.ToolResults)

	analysis := resp.Metadata["analysis"].(map[string]interface{})
	assert.Equal(t, "general", analysis["category"])
	assert.Equal(t, "medium", analysis["complexity"])
}

func TestProcessRequestNonJSONAnalysisFallsBack(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			"I think you want to list things but I cannot say for sure.",
			"Here is a general answer.",
		},
	}

	a := newTestAgent(t, model)
	resp := a.ProcessRequest(context.Background(), "hello", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "Here is a general answer.", resp.Content)
	assert.Empty(t, resp.ToolResults)
}

func TestProcessRequestGenerationFailureIsAResult(t *testing.T) {
	model := &fakeModel{
		responses: []string{`{"intent":"x","category":"general","tools_needed":[],"parameters":{},"complexity":"low"}`},
		errs:      []error{nil, errors.New("model unavailable")},
	}

	a := newTestAgent(t, model)
	resp := a.ProcessRequest(context.Background(), "hello", nil)

	require.True(t, resp.Success)
	assert.Contains(t, resp.Content, "error generating a response")
	assert.Contains(t, resp.Content, "model unavailable")

	// the degraded answer is still remembered
	history := a.ConversationHistory()
	assert.Equal(t, "assistant", history[len(history)-1]["role"])
}

func TestProcessRequestToolRestriction(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"infrastructure","tools_needed":["allowed_tool","denied_tool"],"parameters":{},"complexity":"low"}`,
			"Done.",
		},
	}

	allowed := tool.NewFunc("allowed_tool", "ok", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"ran": true}, nil
		})
	denied := tool.NewFunc("denied_tool", "not ok", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			t.Fatal("denied tool must not execute")
			return nil, nil
		})

	a, err := New(
		WithModel(model),
		WithLogger(logging.Noop()),
		WithTools(allowed, denied),
		WithToolRestriction(guardrails.NewToolRestriction([]string{"allowed_tool"})),
	)
	require.NoError(t, err)

	resp := a.ProcessRequest(context.Background(), "run both", nil)

	require.True(t, resp.Success)
	allowedResult := resp.ToolResults["allowed_tool"].(map[string]interface{})
	assert.Equal(t, true, allowedResult["success"])
	deniedResult := resp.ToolResults["denied_tool"].(map[string]interface{})
	assert.Equal(t, false, deniedResult["success"])
	assert.Equal(t, "Tool not allowed: denied_tool", deniedResult["error"])
}

func TestProcessRequestBlockedInput(t *testing.T) {
	model := &fakeModel{}
	pipeline := guardrails.NewPipeline(
		[]guardrails.Guardrail{guardrails.NewContentFilter([]string{"forbidden"}, guardrails.ActionBlock)},
		nil,
	)

	a, err := New(WithModel(model), WithLogger(logging.Noop()), WithGuardrails(pipeline))
	require.NoError(t, err)

	resp := a.ProcessRequest(context.Background(), "do the forbidden thing", nil)

	require.False(t, resp.Success)
	assert.Zero(t, model.calls)
}

func TestProcessRequestBlockedOutput(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"general","tools_needed":[],"parameters":{},"complexity":"low"}`,
			"here is the secret launch code",
		},
	}
	pipeline := guardrails.NewPipeline(
		nil,
		[]guardrails.Guardrail{guardrails.NewContentFilter([]string{"secret"}, guardrails.ActionBlock)},
	)

	a, err := New(WithModel(model), WithLogger(logging.Noop()), WithGuardrails(pipeline))
	require.NoError(t, err)

	resp := a.ProcessRequest(context.Background(), "tell me", nil)

	require.False(t, resp.Success)
	assert.NotContains(t, resp.Content, "secret launch code")

	// the blocked text must not be remembered either
	history := a.ConversationHistory()
	last := history[len(history)-1]
	assert.Equal(t, "assistant", last["role"])
	assert.NotContains(t, last["content"], "secret launch code")
}

func TestProcessRequestRedactedOutput(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"general","tools_needed":[],"parameters":{},"complexity":"low"}`,
			"the internal-only answer",
		},
	}
	pipeline := guardrails.NewPipeline(
		nil,
		[]guardrails.Guardrail{guardrails.NewContentFilter([]string{"internal-only"}, guardrails.ActionRedact)},
	)

	a, err := New(WithModel(model), WithLogger(logging.Noop()), WithGuardrails(pipeline))
	require.NoError(t, err)

	resp := a.ProcessRequest(context.Background(), "tell me", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "the **** answer", resp.Content)
}

func TestProcessRequestMergesContext(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"general","tools_needed":[],"parameters":{},"complexity":"low"}`,
			"ok",
		},
	}

	a := newTestAgent(t, model)
	a.ProcessRequest(context.Background(), "hello", map[string]interface{}{"cluster": "prod"})

	assert.Equal(t, "prod", a.Memory().Context()["cluster"])
}

func TestParseAnalysisExtractsEmbeddedJSON(t *testing.T) {
	raw := "Sure, here is the analysis:\n" +
		`{"intent":"deploy","category":"network_functions","tools_needed":["deploy_network_function"],"parameters":{"deploy_network_function":{"function_type":"AMF"}},"complexity":"high"}` +
		"\nLet me know if you need more."

	analysis, ok := parseAnalysis(raw)
	require.True(t, ok)
	assert.Equal(t, "deploy", analysis.Intent)
	assert.Equal(t, []string{"deploy_network_function"}, analysis.ToolsNeeded)
	assert.Equal(t, "AMF", analysis.Parameters["deploy_network_function"]["function_type"])
}

func TestParseAnalysisRejectsGarbage(t *testing.T) {
	_, ok := parseAnalysis("no json here")
	assert.False(t, ok)

	_, ok = parseAnalysis("{not valid json}")
	assert.False(t, ok)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))

	out := truncate("ネットワーク機能を再起動してください", 6)
	assert.Equal(t, "ネットワーク...", out)
	assert.True(t, utf8.ValidString(out))
}

func TestHealthCheckAndTools(t *testing.T) {
	model := &fakeModel{}
	noop := tool.NewFunc("noop", "does nothing", nil,
		func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, nil
		})

	a := newTestAgent(t, model, noop)
	require.NoError(t, a.Initialize(context.Background()))

	health := a.HealthCheck(context.Background())
	assert.Equal(t, "fake-model", health["model_id"])
	assert.Contains(t, health["tools"].(map[string]interface{}), "noop")
	assert.Equal(t, []string{"noop"}, a.Tools())
}

func TestClearConversationHistory(t *testing.T) {
	model := &fakeModel{
		responses: []string{
			`{"intent":"x","category":"general","tools_needed":[],"parameters":{},"complexity":"low"}`,
			"ok",
		},
	}

	a := newTestAgent(t, model)
	a.ProcessRequest(context.Background(), "hello", nil)
	require.NotEmpty(t, a.ConversationHistory())

	a.ClearConversationHistory()
	assert.Empty(t, a.ConversationHistory())
}

func TestWithMemoryOption(t *testing.T) {
	conversation := memory.NewConversation(memory.WithMaxMessages(5))
	a, err := New(WithModel(&fakeModel{}), WithMemory(conversation))
	require.NoError(t, err)
	assert.Same(t, conversation, a.Memory())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	content := []byte(`
name: test-agent
provider: bedrock
model_id: anthropic.claude-3-sonnet-20240229-v1:0
region: eu-west-1
max_tokens: 1024
memory:
  max_messages: 50
  retention_hours: 12
allowed_tools:
  - get_system_health
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-agent", cfg.Name)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 50, cfg.Memory.MaxMessages)
	assert.Equal(t, []string{"get_system_health"}, cfg.AllowedTools)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bedrock", cfg.Provider)
	assert.Equal(t, 100, cfg.Memory.MaxMessages)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/agent.yaml")
	require.Error(t, err)
}
