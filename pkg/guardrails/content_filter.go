package guardrails

import (
	"context"
	"regexp"
	"strings"
)

// ContentFilter triggers on a word list. With ActionRedact the matched
// words are masked, with ActionBlock the whole text is rejected.
type ContentFilter struct {
	action Action
	regex  *regexp.Regexp
}

// NewContentFilter creates a content filter over the given words. An empty
// word list yields a filter that never triggers.
func NewContentFilter(blockedWords []string, action Action) *ContentFilter {
	escaped := make([]string, 0, len(blockedWords))
	for _, w := range blockedWords {
		if w == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	cf := &ContentFilter{action: action}
	if len(escaped) > 0 {
		cf.regex = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
	}
	return cf
}

func (c *ContentFilter) Name() string { return "content_filter" }

func (c *ContentFilter) Action() Action { return c.action }

// Check masks any blocked word occurrences
func (c *ContentFilter) Check(ctx context.Context, text string) (bool, string, error) {
	if c.regex == nil || !c.regex.MatchString(text) {
		return false, text, nil
	}
	return true, c.regex.ReplaceAllString(text, "****"), nil
}
