package llmrelay

// Severity grades a validation warning.
type Severity string

const (
	// SeverityInfo marks expected behavior worth knowing about, like a
	// tool name the collision mapper will rewrite on the wire.
	SeverityInfo Severity = "info"

	// SeverityWarning marks settings that may be ignored or clamped by
	// the provider.
	SeverityWarning Severity = "warning"

	// SeverityError marks settings the provider will almost certainly
	// reject. The request is still sent.
	SeverityError Severity = "error"
)

// WarningCode identifies a warning kind so callers can filter or suppress
// programmatically without matching on message text.
type WarningCode string

const (
	WarningCodeModelUnknown      WarningCode = "MODEL_UNKNOWN"
	WarningCodeCapabilityMissing WarningCode = "CAPABILITY_MISSING"

	WarningCodeToolNotInCapabilities    WarningCode = "TOOL_NOT_IN_CAPABILITIES"
	WarningCodeModelDoesNotSupportTools WarningCode = "MODEL_DOES_NOT_SUPPORT_TOOLS"
	WarningCodeToolNameRewritten        WarningCode = "TOOL_NAME_REWRITTEN"

	WarningCodeThinkingUnsupported  WarningCode = "THINKING_UNSUPPORTED"
	WarningCodeThinkingLevelInvalid WarningCode = "THINKING_LEVEL_INVALID"

	WarningCodeTemperatureOutOfRange WarningCode = "TEMPERATURE_OUT_OF_RANGE"
	WarningCodeTopPOutOfRange        WarningCode = "TOP_P_OUT_OF_RANGE"
	WarningCodeTopKOutOfRange        WarningCode = "TOP_K_OUT_OF_RANGE"
)

// ValidationWarning describes one suspect aspect of a request, as judged
// against the capability registry. Warnings never block the request; the
// provider's own validation is authoritative and may disagree with the
// registry data.
type ValidationWarning struct {
	Code     WarningCode // stable identifier for programmatic filtering
	Category string      // "model", "tool", "thinking", "parameter"
	Field    string      // request field the warning is about
	Value    any         // the suspect value as supplied
	Message  string      // human-readable explanation
	Severity Severity
}

// ValidationRule is one check the engine runs per request. Implement it to
// add project-specific checks alongside the built-in rules.
type ValidationRule interface {
	// Name identifies the rule for RemoveRule.
	Name() string

	// Check inspects the request and returns zero or more warnings.
	Check(provider string, req *ChatRequest) []ValidationWarning
}
