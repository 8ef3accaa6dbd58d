package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisSystemEmbedsCatalog(t *testing.T) {
	out := AnalysisSystem("- describe_vpcs: List and describe VPCs\n")

	assert.Contains(t, out, "describe_vpcs")
	assert.Contains(t, out, `"tools_needed"`)
}

func TestGenerationUser(t *testing.T) {
	out := GenerationUser(GenerationInput{
		UserInput: "what is deployed?",
		Analysis:  `{"intent":"list"}`,
		Context:   "Tool execution results: {}",
	})

	assert.Contains(t, out, "User request: what is deployed?")
	assert.Contains(t, out, `{"intent":"list"}`)
	assert.Contains(t, out, "Tool execution results")
}
