package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// convertTools converts the request's function tools and provider-native
// tools to Anthropic SDK format. Built-in tool names (search, text_editor,
// bash) route to the corresponding Anthropic typed tools; everything else is
// a custom function tool carrying its wire name from the mapping.
func convertTools(params *llmrelay.RequestParams, mapping *llmrelay.ToolNameMapping) ([]anthropic.ToolUnionParam, error) {
	if params == nil {
		return nil, nil
	}

	var result []anthropic.ToolUnionParam

	for _, pt := range params.ProviderTools {
		if pt.ID != llmrelay.AnthropicWebSearch.ID {
			// Other vendors' native tools are not ours to enable.
			continue
		}
		result = append(result, anthropic.ToolUnionParam{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{},
		})
	}
	if params.WebSearch != nil && *params.WebSearch && len(result) == 0 {
		result = append(result, anthropic.ToolUnionParam{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{},
		})
	}

	for i, tool := range params.Tools {
		var anthropicTool anthropic.ToolUnionParam
		var err error

		switch tool.Function.Name {
		case "search":
			// Anthropic executes web search server-side.
			anthropicTool = anthropic.ToolUnionParam{
				OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{},
			}
		case "text_editor":
			anthropicTool = anthropic.ToolUnionParam{
				OfTextEditor20250728: &anthropic.ToolTextEditor20250728Param{},
			}
		case "bash":
			anthropicTool = anthropic.ToolUnionParam{
				OfBashTool20250124: &anthropic.ToolBash20250124Param{},
			}
		default:
			anthropicTool, err = convertCustomTool(&tool, mapping)
		}

		if err != nil {
			return nil, fmt.Errorf("tool %d (%s): %w", i, tool.Function.Name, err)
		}
		result = append(result, anthropicTool)
	}

	return result, nil
}

// convertCustomTool converts a custom function tool to Anthropic's custom
// tool format, translating the JSON-schema parameters (top-level schema)
// into the input_schema shape (properties + required + extras).
func convertCustomTool(tool *llmrelay.Tool, mapping *llmrelay.ToolNameMapping) (anthropic.ToolUnionParam, error) {
	properties := tool.Function.Parameters["properties"]

	schema := anthropic.ToolInputSchemaParam{
		Properties:  properties,
		ExtraFields: make(map[string]any),
	}

	if required, ok := tool.Function.Parameters["required"].([]interface{}); ok {
		schema.Required = make([]string, len(required))
		for i, v := range required {
			if str, ok := v.(string); ok {
				schema.Required[i] = str
			}
		}
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, mapping.RequestName(tool.Function.Name))

	if tool.Function.Description != "" {
		if toolParam.OfTool == nil {
			toolParam.OfTool = &anthropic.ToolParam{}
		}
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam, nil
}

// convertToolChoice converts library ToolChoice to Anthropic format.
// Returns nil if no tool choice specified (lets provider decide).
func convertToolChoice(choice *llmrelay.ToolChoice, mapping *llmrelay.ToolNameMapping) (*anthropic.ToolChoiceUnionParam, error) {
	if choice == nil {
		return nil, nil
	}

	switch choice.Mode {
	case llmrelay.ToolChoiceModeAuto:
		return &anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}, nil

	case llmrelay.ToolChoiceModeRequired:
		// Anthropic calls this "any"
		return &anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}, nil

	case llmrelay.ToolChoiceModeNone:
		noneParam := anthropic.NewToolChoiceNoneParam()
		return &anthropic.ToolChoiceUnionParam{
			OfNone: &noneParam,
		}, nil

	case llmrelay.ToolChoiceModeSpecific:
		if choice.ToolName == "" {
			return nil, fmt.Errorf("tool_name required for specific mode")
		}
		unionParam := anthropic.ToolChoiceParamOfTool(mapping.RequestName(choice.ToolName))
		return &unionParam, nil

	default:
		return nil, fmt.Errorf("unsupported tool choice mode: %s", choice.Mode)
	}
}
