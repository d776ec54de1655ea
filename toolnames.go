package llmrelay

import "fmt"

// ToolNameMapping is the per-request bidirectional mapping between tool
// names as the caller knows them and the names actually sent on the wire.
//
// Providers identify tools by a single flat name in requests and responses.
// A user function literally named "web_search_preview" would collide with a
// provider's built-in web-search tool of the same request name, corrupting
// routing of tool-call results back to the correct handler. The mapping
// rewrites colliding function names with a numeric suffix and remembers both
// directions so responses can be translated back.
//
// Lifetime is exactly one request/stream. Tool sets can differ call to call,
// so the mapping is rebuilt per request and never cached.
type ToolNameMapping struct {
	requestNameByFunction map[string]string // original function name -> wire name
	functionByRequestName map[string]string // wire name -> original function name
	requestNameByToolID   map[string]string // provider tool id -> wire name
	toolIDByRequestName   map[string]string // wire name -> provider tool id
}

// NewToolNameMapping builds the mapping for one request.
//
// functionToolNames are the caller's function tools in request order.
// providerToolRequestNamesByID maps provider-native tool ids (e.g.
// "openai.web_search_preview") to their canonical on-wire names. Provider
// tool names are immutable and always win a collision: a function tool whose
// name is already taken is rewritten to name__1, name__2, ... until free.
// A function tool that collides with nothing keeps its own name even when a
// colliding sibling would otherwise be rewritten onto it: suffix search
// skips every function tool's own name, so ["web_search_preview",
// "web_search_preview__1"] against a provider "web_search_preview" yields
// web_search_preview__2 for the first and leaves the second untouched.
func NewToolNameMapping(functionToolNames []string, providerToolRequestNamesByID map[string]string) *ToolNameMapping {
	m := &ToolNameMapping{
		requestNameByFunction: make(map[string]string, len(functionToolNames)),
		functionByRequestName: make(map[string]string, len(functionToolNames)),
		requestNameByToolID:   make(map[string]string, len(providerToolRequestNamesByID)),
		toolIDByRequestName:   make(map[string]string, len(providerToolRequestNamesByID)),
	}

	// taken holds names no function may be assigned: provider names plus
	// wire names already handed out. reserved additionally protects every
	// function tool's own name from being claimed by a sibling's suffix.
	taken := make(map[string]bool, len(functionToolNames)+len(providerToolRequestNamesByID))
	for id, name := range providerToolRequestNamesByID {
		taken[name] = true
		m.requestNameByToolID[id] = name
		m.toolIDByRequestName[name] = id
	}
	reserved := make(map[string]bool, len(functionToolNames))
	for _, name := range functionToolNames {
		reserved[name] = true
	}

	for _, name := range functionToolNames {
		wireName := name
		if taken[wireName] {
			for suffix := 1; taken[wireName] || reserved[wireName]; suffix++ {
				wireName = fmt.Sprintf("%s__%d", name, suffix)
			}
		}
		taken[wireName] = true
		m.requestNameByFunction[name] = wireName
		m.functionByRequestName[wireName] = name
	}

	return m
}

// RequestName returns the on-wire name for a caller function tool name.
// Unknown names map to themselves.
func (m *ToolNameMapping) RequestName(functionName string) string {
	if wire, ok := m.requestNameByFunction[functionName]; ok {
		return wire
	}
	return functionName
}

// OriginalName returns the caller's function name for an on-wire name.
// Unknown names map to themselves, so responses naming a provider tool or
// an unmapped function pass through unchanged.
func (m *ToolNameMapping) OriginalName(requestName string) string {
	if orig, ok := m.functionByRequestName[requestName]; ok {
		return orig
	}
	return requestName
}

// ProviderToolRequestName returns the on-wire name for a provider tool id.
func (m *ToolNameMapping) ProviderToolRequestName(toolID string) (string, bool) {
	name, ok := m.requestNameByToolID[toolID]
	return name, ok
}

// ProviderToolID returns the provider tool id owning an on-wire name, if
// that name belongs to a provider-native tool.
func (m *ToolNameMapping) ProviderToolID(requestName string) (string, bool) {
	id, ok := m.toolIDByRequestName[requestName]
	return id, ok
}

// IsProviderTool reports whether an on-wire name routes to a provider-native
// tool rather than a caller function.
func (m *ToolNameMapping) IsProviderTool(requestName string) bool {
	_, ok := m.toolIDByRequestName[requestName]
	return ok
}
