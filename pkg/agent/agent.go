// Package agent ties the model, the tool registry, and conversation memory
// into the per-turn orchestration loop.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corenetops/devops-agent/pkg/guardrails"
	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/memory"
	"github.com/corenetops/devops-agent/pkg/prompts"
	"github.com/corenetops/devops-agent/pkg/tool"
)

const (
	defaultMaxTokens         = 2048
	defaultAnalysisMaxTokens = 1000
)

// Agent owns one conversation and one tool registry and processes requests
// one turn at a time. It provides no turn-level locking: callers that need
// concurrent turns on one instance must serialize ProcessRequest themselves.
type Agent struct {
	model        interfaces.ModelClient
	memory       *memory.Conversation
	registry     *tool.Registry
	logger       logging.Logger
	tracer       interfaces.Tracer
	guards       interfaces.Guardrails
	restriction  *guardrails.ToolRestriction
	region       string
	maxTokens    int
	systemPrompt string
}

// Option configures an agent
type Option func(*Agent)

// WithModel sets the model client
func WithModel(model interfaces.ModelClient) Option {
	return func(a *Agent) {
		a.model = model
	}
}

// WithMemory sets the conversation memory
func WithMemory(conversation *memory.Conversation) Option {
	return func(a *Agent) {
		a.memory = conversation
	}
}

// WithRegistry sets the tool registry
func WithRegistry(registry *tool.Registry) Option {
	return func(a *Agent) {
		a.registry = registry
	}
}

// WithTools registers tools into the agent's registry
func WithTools(tools ...tool.Tool) Option {
	return func(a *Agent) {
		if a.registry == nil {
			a.registry = tool.NewRegistry(a.logger)
		}
		for _, t := range tools {
			a.registry.Register(t)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithTracer sets the tracer
func WithTracer(tracer interfaces.Tracer) Option {
	return func(a *Agent) {
		a.tracer = tracer
	}
}

// WithGuardrails sets the text guardrails pipeline
func WithGuardrails(guards interfaces.Guardrails) Option {
	return func(a *Agent) {
		a.guards = guards
	}
}

// WithToolRestriction limits which tools the model may select
func WithToolRestriction(restriction *guardrails.ToolRestriction) Option {
	return func(a *Agent) {
		a.restriction = restriction
	}
}

// WithRegion records the cloud region for response metadata
func WithRegion(region string) Option {
	return func(a *Agent) {
		a.region = region
	}
}

// WithMaxTokens sets the response generation token cap
func WithMaxTokens(n int) Option {
	return func(a *Agent) {
		a.maxTokens = n
	}
}

// WithSystemPrompt overrides the default response persona
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// New creates an agent. A model client is required; everything else has a
// working default.
func New(options ...Option) (*Agent, error) {
	a := &Agent{
		logger:       logging.Noop(),
		maxTokens:    defaultMaxTokens,
		systemPrompt: prompts.DefaultSystem,
	}
	for _, option := range options {
		option(a)
	}

	if a.model == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if a.memory == nil {
		a.memory = memory.NewConversation(memory.WithLogger(a.logger))
	}
	if a.registry == nil {
		a.registry = tool.NewRegistry(a.logger)
	}
	return a, nil
}

// Initialize prepares every registered tool. Individual tool failures are
// logged and leave the tool unhealthy, per the registry contract.
func (a *Agent) Initialize(ctx context.Context) error {
	a.registry.InitializeAll(ctx)
	return nil
}

// ProcessRequest runs one conversational turn: remember the input, ask the
// model what to do, run the selected tools sequentially, and generate the
// final answer. Domain failures degrade the turn; only a bug escaping the
// whole pipeline yields Success=false.
func (a *Agent) ProcessRequest(ctx context.Context, input string, extra map[string]interface{}) (response *Response) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	if a.tracer != nil {
		var span interfaces.Span
		ctx, span = a.tracer.StartSpan(ctx, "agent.ProcessRequest")
		defer span.End()
		span.SetAttribute("request.id", requestID)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error(ctx, "turn failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			content := fmt.Sprintf("I encountered an error processing your request: %v", r)
			response = &Response{
				Content:   content,
				Success:   false,
				Metadata:  map[string]interface{}{"error": fmt.Sprintf("%v", r), "request_id": requestID},
				Timestamp: time.Now(),
			}
			// best effort, the turn is already broken
			_ = a.memory.AddMessage(string(memory.RoleAssistant), content,
				memory.WithMetadata(map[string]interface{}{"error": true}))
		}
	}()

	if a.guards != nil {
		guarded, err := a.guards.ProcessInput(ctx, input)
		if err != nil {
			a.logger.Warn(ctx, "input rejected by guardrails", map[string]interface{}{"error": err.Error()})
			content := "I can't process that request: " + err.Error()
			return &Response{
				Content:   content,
				Success:   false,
				Metadata:  map[string]interface{}{"error": err.Error(), "request_id": requestID},
				Timestamp: time.Now(),
			}
		}
		input = guarded
	}

	if err := a.memory.AddMessage(string(memory.RoleUser), input, memory.WithMetadata(extra)); err != nil {
		panic(err)
	}
	if len(extra) > 0 {
		a.memory.UpdateContext(extra)
	}

	analysis := a.analyzeRequest(ctx, input)

	var toolResults map[string]interface{}
	if len(analysis.ToolsNeeded) > 0 {
		toolResults = a.executeTools(ctx, analysis)
	}

	content := a.generateResponse(ctx, input, analysis, toolResults)

	success := true
	if a.guards != nil {
		guarded, err := a.guards.ProcessOutput(ctx, content)
		if err != nil {
			a.logger.Warn(ctx, "output rejected by guardrails", map[string]interface{}{"error": err.Error()})
			content = "I can't share that response: " + err.Error()
			success = false
		} else {
			content = guarded
		}
	}

	if err := a.memory.AddMessage(string(memory.RoleAssistant), content,
		memory.WithToolResults(toolResults)); err != nil {
		panic(err)
	}

	a.logger.Info(ctx, "request processed", map[string]interface{}{
		"tools_used": len(analysis.ToolsNeeded),
		"category":   analysis.Category,
	})

	return &Response{
		Content:     content,
		Success:     success,
		ToolResults: toolResults,
		Metadata: map[string]interface{}{
			"analysis":   analysis.toMap(),
			"model_id":   a.model.ModelID(),
			"region":     a.region,
			"request_id": requestID,
		},
		Timestamp: time.Now(),
	}
}

// analyzeRequest asks the model which tools the request needs. Every failure
// path returns the fallback analysis so the turn proceeds without tools.
func (a *Agent) analyzeRequest(ctx context.Context, input string) *Analysis {
	if a.tracer != nil {
		var span interfaces.Span
		ctx, span = a.tracer.StartSpan(ctx, "agent.analyzeRequest")
		defer span.End()
	}

	system := prompts.AnalysisSystem(a.toolCatalog())

	raw, err := a.model.Invoke(ctx, interfaces.ModelRequest{
		System: system,
		Messages: []interfaces.ModelMessage{
			{Role: "user", Content: "Analyze this request: " + input},
		},
		MaxTokens: defaultAnalysisMaxTokens,
	})
	if err != nil {
		a.logger.Error(ctx, "intent analysis failed", map[string]interface{}{"error": err.Error()})
		return fallbackAnalysis("Unknown request")
	}

	analysis, ok := parseAnalysis(raw)
	if !ok {
		a.logger.Warn(ctx, "analysis response had no JSON object", nil)
		return fallbackAnalysis("General request")
	}
	return analysis
}

func (a *Agent) toolCatalog() string {
	var b strings.Builder
	for name, t := range a.registry.All() {
		fmt.Fprintf(&b, "- %s: %s\n", name, t.Description())
	}
	if b.Len() == 0 {
		return "(none)\n"
	}
	return b.String()
}

// executeTools runs the selected tools in the order the model gave them.
// A missing or denied tool becomes a failed entry, never an aborted turn.
func (a *Agent) executeTools(ctx context.Context, analysis *Analysis) map[string]interface{} {
	results := make(map[string]interface{}, len(analysis.ToolsNeeded))

	names := analysis.ToolsNeeded
	if a.restriction != nil {
		allowed, denied := a.restriction.Filter(names)
		for _, name := range denied {
			a.logger.Warn(ctx, "tool denied by restriction", map[string]interface{}{"tool": name})
			results[name] = map[string]interface{}{
				"success": false,
				"error":   fmt.Sprintf("Tool not allowed: %s", name),
			}
		}
		names = allowed
	}

	for _, name := range names {
		t, ok := a.registry.Get(name)
		if !ok {
			a.logger.Warn(ctx, "unknown tool requested", map[string]interface{}{"tool": name})
			results[name] = map[string]interface{}{
				"success": false,
				"error":   fmt.Sprintf("Unknown tool: %s", name),
			}
			continue
		}

		params := analysis.Parameters[name]
		if params == nil {
			params = map[string]interface{}{}
		}

		result := tool.Invoke(ctx, a.logger, t, params)
		results[name] = result.ToMap()
	}

	return results
}

// generateResponse produces the final answer. A model failure here becomes
// the answer itself rather than an error, so the turn still completes.
func (a *Agent) generateResponse(ctx context.Context, input string, analysis *Analysis, toolResults map[string]interface{}) string {
	if a.tracer != nil {
		var span interfaces.Span
		ctx, span = a.tracer.StartSpan(ctx, "agent.generateResponse")
		defer span.End()
	}

	var contextParts []string
	if len(toolResults) > 0 {
		contextParts = append(contextParts, "Tool execution results: "+compactJSON(toolResults))
	}
	if recent := a.memory.Recent(3); len(recent) > 0 {
		lines := []string{"Recent conversation context:"}
		for _, msg := range recent {
			lines = append(lines, fmt.Sprintf("- %s: %s", msg.Role, truncate(msg.Content, 100)))
		}
		contextParts = append(contextParts, strings.Join(lines, "\n"))
	}
	contextStr := "No additional context available."
	if len(contextParts) > 0 {
		contextStr = strings.Join(contextParts, "\n\n")
	}

	prompt := prompts.GenerationUser(prompts.GenerationInput{
		UserInput: input,
		Analysis:  compactJSON(analysis.toMap()),
		Context:   contextStr,
	})

	content, err := a.model.Invoke(ctx, interfaces.ModelRequest{
		System: a.systemPrompt,
		Messages: []interfaces.ModelMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		a.logger.Error(ctx, "response generation failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("I encountered an error generating a response: %v", err)
	}
	return content
}

func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// truncate shortens s to n characters, never splitting a multibyte rune
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// HealthCheck reports the model identity and per-tool health
func (a *Agent) HealthCheck(ctx context.Context) map[string]interface{} {
	tools := a.registry.HealthCheckAll(ctx)
	toolHealth := make(map[string]interface{}, len(tools))
	for name, h := range tools {
		toolHealth[name] = h
	}
	return map[string]interface{}{
		"model_id": a.model.ModelID(),
		"region":   a.region,
		"tools":    toolHealth,
		"memory":   a.memory.Stats(),
	}
}

// ConversationHistory returns the conversation in wire format
func (a *Agent) ConversationHistory() []map[string]interface{} {
	return a.memory.History()
}

// ClearConversationHistory empties the conversation
func (a *Agent) ClearConversationHistory() {
	a.memory.Clear()
}

// Tools returns the registered tool names
func (a *Agent) Tools() []string {
	return a.registry.Names()
}

// Memory exposes the conversation for persistence wiring
func (a *Agent) Memory() *memory.Conversation {
	return a.memory
}
