package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/corenetops/devops-agent/pkg/logging"
)

// ErrInvalidRole is returned when a message role string is not recognized
var ErrInvalidRole = errors.New("invalid message role")

// Role identifies the sender of a conversation message
type Role string

// Message roles in a conversation
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ParseRole normalizes a role string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Message is a single message in a conversation. Ordering is strictly by
// append order.
type Message struct {
	Role        Role                   `json:"role"`
	Content     string                 `json:"content"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	ToolResults map[string]interface{} `json:"tool_results,omitempty"`
}

// Stats summarizes a conversation
type Stats struct {
	TotalMessages     int        `json:"total_messages"`
	UserMessages      int        `json:"user_messages"`
	AssistantMessages int        `json:"assistant_messages"`
	OldestMessage     *time.Time `json:"oldest_message,omitempty"`
	NewestMessage     *time.Time `json:"newest_message,omitempty"`
	ContextKeys       []string   `json:"context_keys"`
	HasSummary        bool       `json:"has_summary"`
}

// Conversation is an append-only, capacity- and age-bounded message log with
// a context key/value map and an optional summary. Appends trigger eviction:
// messages older than the retention window are dropped first, then the log
// is trimmed to the most recent maxMessages.
type Conversation struct {
	maxMessages int
	retention   time.Duration
	messages    []Message
	context     map[string]interface{}
	summary     string
	hasSummary  bool
	logger      logging.Logger
	now         func() time.Time
	mu          sync.RWMutex
}

// Option configures a Conversation
type Option func(*Conversation)

// WithMaxMessages sets the maximum number of messages to keep
func WithMaxMessages(n int) Option {
	return func(c *Conversation) {
		c.maxMessages = n
	}
}

// WithRetention sets the message retention window. Zero disables time-based
// eviction; count-based eviction still applies.
func WithRetention(d time.Duration) Option {
	return func(c *Conversation) {
		c.retention = d
	}
}

// WithLogger sets the logger for the conversation
func WithLogger(logger logging.Logger) Option {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// NewConversation creates a conversation memory with a 100-message cap and a
// 24-hour retention window by default
func NewConversation(options ...Option) *Conversation {
	c := &Conversation{
		maxMessages: 100,
		retention:   24 * time.Hour,
		context:     make(map[string]interface{}),
		logger:      logging.Noop(),
		now:         time.Now,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// MessageOption attaches optional fields to an appended message
type MessageOption func(*Message)

// WithMetadata attaches metadata to the message
func WithMetadata(metadata map[string]interface{}) MessageOption {
	return func(m *Message) {
		m.Metadata = metadata
	}
}

// WithToolResults attaches tool execution results to the message
func WithToolResults(results map[string]interface{}) MessageOption {
	return func(m *Message) {
		m.ToolResults = results
	}
}

// AddMessage appends a message with the current timestamp and runs eviction.
// The role string is normalized; an unrecognized role fails with
// ErrInvalidRole.
func (c *Conversation) AddMessage(role, content string, options ...MessageOption) error {
	parsed, err := ParseRole(role)
	if err != nil {
		return err
	}

	msg := Message{
		Role:      parsed,
		Content:   content,
		Timestamp: c.now(),
	}
	for _, option := range options {
		option(&msg)
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.evict()
	c.mu.Unlock()

	c.logger.Debug(context.Background(), "Message added to conversation", map[string]interface{}{
		"role":           string(parsed),
		"content_length": len(content),
	})

	return nil
}

// evict applies the age rule then the count rule. Caller holds the lock.
func (c *Conversation) evict() {
	if c.retention > 0 {
		cutoff := c.now().Add(-c.retention)
		kept := c.messages[:0]
		for _, m := range c.messages {
			if !m.Timestamp.Before(cutoff) {
				kept = append(kept, m)
			}
		}
		c.messages = kept
	}

	if c.maxMessages > 0 && len(c.messages) > c.maxMessages {
		removed := len(c.messages) - c.maxMessages
		c.messages = append([]Message(nil), c.messages[removed:]...)
	}
}

// GetOption filters message retrieval
type GetOption func(*getOptions)

type getOptions struct {
	limit int
	role  Role
	since time.Time
}

// WithLimit keeps only the most recent n messages after other filters
func WithLimit(n int) GetOption {
	return func(o *getOptions) {
		o.limit = n
	}
}

// WithRole filters messages by role
func WithRole(role Role) GetOption {
	return func(o *getOptions) {
		o.role = role
	}
}

// WithSince keeps only messages at or after the given time
func WithSince(since time.Time) GetOption {
	return func(o *getOptions) {
		o.since = since
	}
}

// GetMessages returns a snapshot of the message log with filters applied in
// the order role, since, limit.
func (c *Conversation) GetMessages(options ...GetOption) []Message {
	opts := &getOptions{}
	for _, option := range options {
		option(opts)
	}

	c.mu.RLock()
	messages := append([]Message(nil), c.messages...)
	c.mu.RUnlock()

	if opts.role != "" {
		filtered := messages[:0]
		for _, m := range messages {
			if m.Role == opts.role {
				filtered = append(filtered, m)
			}
		}
		messages = filtered
	}

	if !opts.since.IsZero() {
		filtered := messages[:0]
		for _, m := range messages {
			if !m.Timestamp.Before(opts.since) {
				filtered = append(filtered, m)
			}
		}
		messages = filtered
	}

	if opts.limit > 0 && opts.limit < len(messages) {
		messages = messages[len(messages)-opts.limit:]
	}

	return messages
}

// Recent returns the last n messages in append order, or fewer if the
// history is shorter.
func (c *Conversation) Recent(n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || len(c.messages) == 0 {
		return []Message{}
	}
	if n > len(c.messages) {
		n = len(c.messages)
	}
	return append([]Message(nil), c.messages[len(c.messages)-n:]...)
}

// UpdateContext merges keys into the context map, overwriting existing ones
func (c *Conversation) UpdateContext(updates map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range updates {
		c.context[k] = v
	}
}

// Context returns a copy of the context map
func (c *Conversation) Context() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]interface{}, len(c.context))
	for k, v := range c.context {
		snapshot[k] = v
	}
	return snapshot
}

// ClearContext empties the context map
func (c *Conversation) ClearContext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.context = make(map[string]interface{})
}

// SetSummary sets the conversation summary
func (c *Conversation) SetSummary(summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = summary
	c.hasSummary = true
}

// Summary returns the conversation summary and whether one is set
func (c *Conversation) Summary() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.summary, c.hasSummary
}

// Clear empties messages, context and summary together
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
	c.context = make(map[string]interface{})
	c.summary = ""
	c.hasSummary = false
}

// Stats returns conversation statistics
func (c *Conversation) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.statsLocked()
}

func (c *Conversation) statsLocked() Stats {
	stats := Stats{
		TotalMessages: len(c.messages),
		ContextKeys:   make([]string, 0, len(c.context)),
		HasSummary:    c.hasSummary,
	}

	for k := range c.context {
		stats.ContextKeys = append(stats.ContextKeys, k)
	}

	for _, m := range c.messages {
		switch m.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		}
	}

	if len(c.messages) > 0 {
		oldest := c.messages[0].Timestamp
		newest := c.messages[len(c.messages)-1].Timestamp
		stats.OldestMessage = &oldest
		stats.NewestMessage = &newest
	}

	return stats
}

// WireFormat projects each message to {role, content, tool_results?} in
// append order, the exact structure handed to the model as context.
func (c *Conversation) WireFormat() []map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wire := make([]map[string]interface{}, 0, len(c.messages))
	for _, m := range c.messages {
		entry := map[string]interface{}{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.ToolResults != nil {
			entry["tool_results"] = m.ToolResults
		}
		wire = append(wire, entry)
	}
	return wire
}

// History returns the full message log as plain maps
func (c *Conversation) History() []map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := make([]map[string]interface{}, 0, len(c.messages))
	for _, m := range c.messages {
		entry := map[string]interface{}{
			"role":      string(m.Role),
			"content":   m.Content,
			"timestamp": m.Timestamp.Format(time.RFC3339Nano),
		}
		if m.Metadata != nil {
			entry["metadata"] = m.Metadata
		}
		if m.ToolResults != nil {
			entry["tool_results"] = m.ToolResults
		}
		history = append(history, entry)
	}
	return history
}
