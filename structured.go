package llmrelay

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeStructured decodes a structured-output response into v.
//
// Models asked for JSON output still occasionally wrap it in a markdown
// fence or leading prose; the decoder strips a surrounding ```json fence
// before validating. Failures are reported as a ResponseFormatError carrying
// the raw text, distinguishable from transport errors via ErrResponseFormat.
func DecodeStructured(provider ProviderID, resp *ChatResponse, v interface{}) error {
	raw := strings.TrimSpace(resp.Text)
	raw = stripJSONFence(raw)

	if !gjson.Valid(raw) {
		return &ResponseFormatError{
			Provider: provider.String(),
			Raw:      resp.Text,
			Reason:   "response is not valid JSON",
		}
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return &ResponseFormatError{
			Provider: provider.String(),
			Raw:      resp.Text,
			Reason:   "JSON does not match the requested shape: " + err.Error(),
		}
	}

	return nil
}

// RequireFields verifies that a structured response contains the given
// top-level fields, for callers that validate shape before full decoding.
func RequireFields(provider ProviderID, resp *ChatResponse, fields ...string) error {
	raw := stripJSONFence(strings.TrimSpace(resp.Text))

	if !gjson.Valid(raw) {
		return &ResponseFormatError{
			Provider: provider.String(),
			Raw:      resp.Text,
			Reason:   "response is not valid JSON",
		}
	}

	for _, f := range fields {
		if !gjson.Get(raw, f).Exists() {
			return &ResponseFormatError{
				Provider: provider.String(),
				Raw:      resp.Text,
				Reason:   "missing required field: " + f,
			}
		}
	}

	return nil
}

// stripJSONFence removes a surrounding markdown code fence, if present.
func stripJSONFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
