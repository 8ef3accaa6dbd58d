package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corenetops/devops-agent/pkg/logging"
)

// Registry is a process-local mapping from tool name to Tool instance.
// Registering under a name already present overwrites the previous binding.
type Registry struct {
	tools  map[string]Tool
	logger logging.Logger
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool, replacing any existing binding with the same name
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[t.Name()] = t
	r.logger.Info(context.Background(), "Tool registered", map[string]interface{}{"tool": t.Name()})
}

// Unregister removes a tool; removing an absent name is a no-op
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		delete(r.tools, name)
		r.logger.Info(context.Background(), "Tool unregistered", map[string]interface{}{"tool": name})
	}
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// All returns a snapshot copy of the registered tools
func (r *Registry) All() map[string]Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]Tool, len(r.tools))
	for name, t := range r.tools {
		snapshot[name] = t
	}
	return snapshot
}

// Names returns the registered tool names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Specs returns the wire-schema projections of every registered tool. A tool
// whose spec cannot be produced is skipped and logged, the rest continue.
func (r *Registry) Specs() []map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]map[string]interface{}, 0, len(r.tools))
	for name, t := range r.tools {
		spec, err := safeSpec(t)
		if err != nil {
			r.logger.Error(context.Background(), "Failed to get tool spec", map[string]interface{}{
				"tool":  name,
				"error": err.Error(),
			})
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func safeSpec(t Tool) (spec map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("spec panicked: %v", r)
		}
	}()

	s := t.Spec()
	if s == nil {
		return nil, fmt.Errorf("tool has no spec")
	}
	return s.WireFormat(), nil
}

// InitializeAll initializes every registered tool, logging and continuing
// past individual failures. Partial initialization is not fatal.
func (r *Registry) InitializeAll(ctx context.Context) {
	for name, t := range r.All() {
		if err := r.initializeOne(ctx, t); err != nil {
			r.logger.Error(ctx, "Failed to initialize tool", map[string]interface{}{
				"tool":  name,
				"error": err.Error(),
			})
		}
	}
}

func (r *Registry) initializeOne(ctx context.Context, t Tool) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("initialize panicked: %v", rec)
		}
	}()
	return t.Initialize(ctx)
}

// HealthCheckAll returns a health snapshot per registered tool. A tool whose
// health check panics is reported with status "error", not propagated.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]Health {
	results := make(map[string]Health)
	for name, t := range r.All() {
		results[name] = safeHealth(ctx, name, t)
	}
	return results
}

func safeHealth(ctx context.Context, name string, t Tool) (h Health) {
	defer func() {
		if rec := recover(); rec != nil {
			h = Health{
				Tool:      name,
				Status:    StatusError,
				Error:     fmt.Sprintf("%v", rec),
				Timestamp: time.Now(),
			}
		}
	}()
	return t.Health(ctx)
}
