package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Snapshot is the persisted form of a conversation: messages, context and
// summary captured atomically, plus stats and a save timestamp.
type Snapshot struct {
	Messages []Message              `json:"messages"`
	Context  map[string]interface{} `json:"context"`
	Summary  string                 `json:"summary,omitempty"`
	Stats    Stats                  `json:"stats"`
	SavedAt  time.Time              `json:"saved_at"`
}

// ErrNoSnapshot is returned when the store holds no saved conversation
var ErrNoSnapshot = errors.New("no conversation snapshot found")

// Store persists conversation snapshots
type Store interface {
	// Save writes a snapshot, replacing any previous one
	Save(ctx context.Context, snapshot *Snapshot) error

	// Load reads the last saved snapshot
	Load(ctx context.Context) (*Snapshot, error)
}

// Save writes the conversation state to the store as one snapshot
func (c *Conversation) Save(ctx context.Context, store Store) error {
	c.mu.RLock()
	snapshot := &Snapshot{
		Messages: append([]Message(nil), c.messages...),
		Context:  make(map[string]interface{}, len(c.context)),
		Stats:    c.statsLocked(),
		SavedAt:  c.now(),
	}
	for k, v := range c.context {
		snapshot.Context[k] = v
	}
	if c.hasSummary {
		snapshot.Summary = c.summary
	}
	c.mu.RUnlock()

	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	c.logger.Info(ctx, "Conversation saved", map[string]interface{}{
		"message_count": len(snapshot.Messages),
	})
	return nil
}

// Load replaces the in-memory state with the stored snapshot. This is a full
// replacement, not a merge.
func (c *Conversation) Load(ctx context.Context, store Store) error {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	c.mu.Lock()
	c.messages = append([]Message(nil), snapshot.Messages...)
	c.context = make(map[string]interface{}, len(snapshot.Context))
	for k, v := range snapshot.Context {
		c.context[k] = v
	}
	c.summary = snapshot.Summary
	c.hasSummary = snapshot.Summary != ""
	c.mu.Unlock()

	c.logger.Info(ctx, "Conversation loaded", map[string]interface{}{
		"message_count": len(snapshot.Messages),
	})
	return nil
}

// FileStore persists snapshots as a JSON document on local disk
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot to the file, replacing its contents
func (f *FileStore) Save(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot from the file
func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
