package guardrails

import (
	"context"
	"regexp"
)

// SecretRedactor masks credentials that operators tend to paste into chat:
// AWS access keys, bearer tokens, and anything that looks like a
// key=value secret assignment.
type SecretRedactor struct {
	patterns map[string]*regexp.Regexp
}

// NewSecretRedactor creates a secret redactor with the built-in patterns
func NewSecretRedactor() *SecretRedactor {
	return &SecretRedactor{
		patterns: map[string]*regexp.Regexp{
			"aws_access_key": regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`),
			"bearer_token":   regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{16,}=*`),
			"secret_assign":  regexp.MustCompile(`(?i)\b(password|passwd|secret|token|api[_-]?key)\s*[:=]\s*\S+`),
		},
	}
}

func (s *SecretRedactor) Name() string { return "secret_redactor" }

// Action is always redact; blocking on a pasted secret would lose the
// rest of the request.
func (s *SecretRedactor) Action() Action { return ActionRedact }

// Check replaces each credential with a labeled placeholder
func (s *SecretRedactor) Check(ctx context.Context, text string) (bool, string, error) {
	modified := text
	triggered := false
	for name, pattern := range s.patterns {
		if pattern.MatchString(modified) {
			triggered = true
			modified = pattern.ReplaceAllString(modified, "[REDACTED "+name+"]")
		}
	}
	return triggered, modified, nil
}
