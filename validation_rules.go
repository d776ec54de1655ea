package llmrelay

import (
	"fmt"
)

// ModelValidationRule checks model-related warnings
type ModelValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ModelValidationRule) Name() string {
	return "Model Validation"
}

func (r *ModelValidationRule) Check(provider string, req *ChatRequest) []ValidationWarning {
	var warnings []ValidationWarning

	// Check if model exists in capabilities (might be outdated)
	if !r.registry.SupportsModel(provider, req.Model) {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelUnknown,
			Category: "model",
			Field:    "model",
			Value:    req.Model,
			Message:  fmt.Sprintf("Model %s not found in %s capabilities (capabilities may be outdated)", req.Model, provider),
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// ToolValidationRule checks tool-related warnings, including name rewrites
// the collision mapper will apply on the wire.
type ToolValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ToolValidationRule) Name() string {
	return "Tool Validation"
}

func (r *ToolValidationRule) Check(provider string, req *ChatRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.Params == nil || len(req.Params.Tools) == 0 {
		return warnings
	}

	// Surface function-tool names that will be rewritten to avoid colliding
	// with provider-native tools on the wire.
	mapping := req.Params.NameMapping()
	for _, tool := range req.Params.Tools {
		if wire := mapping.RequestName(tool.Function.Name); wire != tool.Function.Name {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeToolNameRewritten,
				Category: "tool",
				Field:    "tools",
				Value:    tool.Function.Name,
				Message:  fmt.Sprintf("Tool %s collides with a provider tool and will be sent as %s", tool.Function.Name, wire),
				Severity: SeverityInfo,
			})
		}
	}

	modelCap, err := r.registry.GetModelCapability(provider, req.Model)
	if err != nil {
		// Can't check without capabilities
		return warnings
	}

	if !modelCap.Features.Tools {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelDoesNotSupportTools,
			Category: "tool",
			Field:    "tools",
			Value:    len(req.Params.Tools),
			Message:  fmt.Sprintf("Model %s might not support tools", req.Model),
			Severity: SeverityWarning,
		})
		return warnings
	}

	for _, pt := range req.Params.ProviderTools {
		if _, err := r.registry.GetNativeToolInfo(provider, req.Model, pt.RequestName); err != nil {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeToolNotInCapabilities,
				Category: "tool",
				Field:    "provider_tools",
				Value:    pt.ID,
				Message:  fmt.Sprintf("Provider tool %s might not be supported by %s", pt.ID, req.Model),
				Severity: SeverityInfo,
			})
		}
	}

	return warnings
}

// ThinkingValidationRule checks thinking-related warnings
type ThinkingValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ThinkingValidationRule) Name() string {
	return "Thinking Validation"
}

func (r *ThinkingValidationRule) Check(provider string, req *ChatRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if !req.Params.ThinkingRequested() {
		return warnings
	}

	if req.Params.ThinkingLevel != nil {
		if _, err := r.registry.ConvertEffortToBudget(provider, req.Model, *req.Params.ThinkingLevel); err != nil {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeThinkingLevelInvalid,
				Category: "thinking",
				Field:    "thinking_level",
				Value:    *req.Params.ThinkingLevel,
				Message:  "Unknown thinking level (valid: low, medium, high)",
				Severity: SeverityWarning,
			})
		}
	}

	modelCap, err := r.registry.GetModelCapability(provider, req.Model)
	if err != nil {
		// Can't check without capabilities
		return warnings
	}

	if !modelCap.Features.Thinking {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeThinkingUnsupported,
			Category: "thinking",
			Field:    "thinking_enabled",
			Value:    true,
			Message:  fmt.Sprintf("Model %s might not support extended thinking", req.Model),
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// ParameterValidationRule checks parameter range warnings
type ParameterValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ParameterValidationRule) Name() string {
	return "Parameter Validation"
}

func (r *ParameterValidationRule) Check(provider string, req *ChatRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.Params == nil {
		return warnings
	}

	providerCaps, err := r.registry.GetProviderCapabilities(provider)
	if err != nil {
		// Can't check without capabilities
		return warnings
	}

	constraints := providerCaps.Constraints

	if req.Params.Temperature != nil {
		temp := *req.Params.Temperature
		if temp < constraints.TemperatureMin || temp > constraints.TemperatureMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTemperatureOutOfRange,
				Category: "parameter",
				Field:    "temperature",
				Value:    temp,
				Message:  fmt.Sprintf("Temperature %.2f outside recommended range [%.2f, %.2f]", temp, constraints.TemperatureMin, constraints.TemperatureMax),
				Severity: SeverityWarning,
			})
		}
	}

	if req.Params.TopP != nil {
		topP := *req.Params.TopP
		if topP < constraints.TopPMin || topP > constraints.TopPMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTopPOutOfRange,
				Category: "parameter",
				Field:    "top_p",
				Value:    topP,
				Message:  fmt.Sprintf("TopP %.2f outside recommended range [%.2f, %.2f]", topP, constraints.TopPMin, constraints.TopPMax),
				Severity: SeverityWarning,
			})
		}
	}

	if req.Params.TopK != nil {
		topK := *req.Params.TopK
		if topK < constraints.TopKMin || topK > constraints.TopKMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTopKOutOfRange,
				Category: "parameter",
				Field:    "top_k",
				Value:    topK,
				Message:  fmt.Sprintf("TopK %d outside recommended range [%d, %d]", topK, constraints.TopKMin, constraints.TopKMax),
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}
