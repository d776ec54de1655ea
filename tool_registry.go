package llmrelay

import (
	"fmt"
	"sync"
)

// ToolDefinition pairs a tool name with a factory producing fresh Tool
// instances. Factories run per Create call, so each request can mutate its
// own copy without affecting others.
type ToolDefinition struct {
	Name        string
	Description string
	Factory     func() (*Tool, error)
}

// ToolRegistry maps tool names to definitions so callers can construct
// tools by name at runtime, e.g. from configuration. The built-in tool
// types are pre-registered on the global instance.
type ToolRegistry struct {
	tools map[string]ToolDefinition
	mu    sync.RWMutex
}

var (
	globalToolRegistry     *ToolRegistry
	globalToolRegistryOnce sync.Once
)

// GetToolRegistry returns the global registry, populating the built-in
// definitions on first use.
func GetToolRegistry() *ToolRegistry {
	globalToolRegistryOnce.Do(func() {
		globalToolRegistry = &ToolRegistry{
			tools: make(map[string]ToolDefinition),
		}
		globalToolRegistry.registerBuiltInTools()
	})
	return globalToolRegistry
}

func (r *ToolRegistry) registerBuiltInTools() {
	builtIns := []ToolDefinition{
		{
			Name:        ToolTypeSearch,
			Description: "Searches the web, server-executed where the provider supports it",
			Factory:     NewSearchTool,
		},
		{
			Name:        ToolTypeTextEditor,
			Description: "Views and edits files, executed by the caller",
			Factory:     NewTextEditorTool,
		},
		{
			Name:        ToolTypeBash,
			Description: "Runs shell commands, executed by the caller",
			Factory:     NewBashTool,
		},
	}
	for _, def := range builtIns {
		_ = r.Register(def)
	}
}

// Register adds a definition. Names are first-come: re-registering an
// existing name fails rather than silently replacing it (Unregister first
// to swap an implementation).
func (r *ToolRegistry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Factory == nil {
		return fmt.Errorf("factory function is required for tool %s", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}

	r.tools[def.Name] = def
	return nil
}

// Unregister removes a definition by name.
func (r *ToolRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return fmt.Errorf("tool %s is not registered", name)
	}

	delete(r.tools, name)
	return nil
}

// Get looks up a definition by name.
func (r *ToolRegistry) Get(name string) (ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.tools[name]
	if !exists {
		return ToolDefinition{}, fmt.Errorf("unknown tool: %s", name)
	}
	return def, nil
}

// IsRegistered reports whether a name has a definition.
func (r *ToolRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// List returns all registered tool names, in no particular order.
func (r *ToolRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Create instantiates a tool through its registered factory.
func (r *ToolRegistry) Create(name string) (*Tool, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return def.Factory()
}

// RegisterTool registers a definition with the global registry.
func RegisterTool(def ToolDefinition) error {
	return GetToolRegistry().Register(def)
}

// CreateTool instantiates a tool by name from the global registry.
func CreateTool(name string) (*Tool, error) {
	return GetToolRegistry().Create(name)
}
