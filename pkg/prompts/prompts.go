// Package prompts holds the model-facing prompt templates. Keeping them in
// one place makes the model contract reviewable without reading the
// orchestration code.
package prompts

import (
	"strings"
	"text/template"
)

// DefaultSystem is the response-generation persona used when the
// configuration does not override it.
const DefaultSystem = `You are a Core Network DevOps AI Agent specializing in:
- 5G and LTE core network functions (AMF, SMF, UPF, MME, SGW, PGW, etc.)
- AWS infrastructure management (EC2, EKS, VPC, etc.)
- Kubernetes operations and container orchestration
- DevOps automation and CI/CD pipelines
- Network monitoring and observability

Provide helpful, accurate, and actionable responses. When tool results are available,
incorporate them into your response. Be specific about what actions were taken or
what information was found.

If errors occurred, explain them clearly and suggest next steps.`

var analysisSystem = template.Must(template.New("analysis_system").Parse(
	`You are an AI assistant that analyzes requests for core network and DevOps operations.

Available tools:
{{.ToolCatalog}}
Analyze the user request and return a JSON response with:
{
    "intent": "brief description of what user wants",
    "category": "infrastructure|network_functions|monitoring|general",
    "tools_needed": ["list", "of", "required", "tools"],
    "parameters": {"tool_name": {"param": "value"}},
    "complexity": "low|medium|high"
}

Only use tool names from the available tools list. Return the JSON object and nothing else.`))

var generationUser = template.Must(template.New("generation_user").Parse(
	`User request: {{.UserInput}}

Request analysis: {{.Analysis}}

Context and tool results:
{{.Context}}

Please provide a comprehensive response to the user's request.`))

// AnalysisSystem renders the intent-analysis system instruction around the
// tool catalog (one "- name: description" line per tool).
func AnalysisSystem(toolCatalog string) string {
	return render(analysisSystem, struct{ ToolCatalog string }{ToolCatalog: toolCatalog})
}

// GenerationInput is the per-turn material for the final response prompt
type GenerationInput struct {
	UserInput string
	Analysis  string
	Context   string
}

// GenerationUser renders the response-generation user message
func GenerationUser(in GenerationInput) string {
	return render(generationUser, in)
}

// templates are static, so execution cannot fail on well-formed data
func render(t *template.Template, data interface{}) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
