package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"planka-mcp/internal/service"
)

// Registry holds registered tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if the name is already registered.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = t
	return nil
}

// Find looks up a tool by name.
func (r *Registry) Find(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// All returns all tools sorted by name.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Tool, len(names))
	for i, name := range names {
		result[i] = r.tools[name]
	}
	return result
}

// Catalog returns the descriptors of all tools, sorted by name.
func (r *Registry) Catalog() []Descriptor {
	all := r.All()
	result := make([]Descriptor, len(all))
	for i, t := range all {
		result[i] = Describe(t)
	}
	return result
}

// Call dispatches a call by name. Unknown names yield an error result.
func (r *Registry) Call(ctx context.Context, svc service.Service, name string, args json.RawMessage) Result {
	t, ok := r.Find(name)
	if !ok {
		return ErrorResult("Unknown tool: %s", name)
	}
	return t.Call(ctx, svc, args)
}

// DefaultRegistry is the global tool registry.
var DefaultRegistry = NewRegistry()

// Register adds a tool to the default registry.
func Register(t Tool) {
	if err := DefaultRegistry.Register(t); err != nil {
		panic(err)
	}
}
