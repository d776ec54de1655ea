package llmrelay

import (
	"testing"
)

func TestValidateRequestParams_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float64
		wantErr     bool
	}{
		{"nil temperature is valid", nil, false},
		{"temperature 0.0", float64Ptr(0.0), false},
		{"temperature 1.0", float64Ptr(1.0), false},
		{"temperature 2.0", float64Ptr(2.0), false},
		{"temperature -0.1 is invalid", float64Ptr(-0.1), true},
		{"temperature 2.1 is invalid", float64Ptr(2.1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &RequestParams{
				Temperature: tt.temperature,
			}
			err := ValidateRequestParams(params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequestParams_TopP(t *testing.T) {
	tests := []struct {
		name    string
		topP    *float64
		wantErr bool
	}{
		{"nil topP is valid", nil, false},
		{"topP 0.0", float64Ptr(0.0), false},
		{"topP 1.0", float64Ptr(1.0), false},
		{"topP 0.5", float64Ptr(0.5), false},
		{"topP -0.1 is invalid", float64Ptr(-0.1), true},
		{"topP 1.1 is invalid", float64Ptr(1.1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &RequestParams{
				TopP: tt.topP,
			}
			err := ValidateRequestParams(params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequestParams_TopK(t *testing.T) {
	tests := []struct {
		name    string
		topK    *int
		wantErr bool
	}{
		{"nil topK is valid", nil, false},
		{"topK 0 is valid", intPtr(0), false},
		{"topK 100", intPtr(100), false},
		{"topK -1 is invalid", intPtr(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequestParams(&RequestParams{TopK: tt.topK})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequestParams_MaxTokens(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens *int
		wantErr   bool
	}{
		{"nil is valid", nil, false},
		{"1 is valid", intPtr(1), false},
		{"0 is invalid", intPtr(0), true},
		{"-5 is invalid", intPtr(-5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequestParams(&RequestParams{MaxTokens: tt.maxTokens})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequestParams_ThinkingLevel(t *testing.T) {
	for _, level := range []string{"low", "medium", "high"} {
		if err := ValidateRequestParams(&RequestParams{ThinkingLevel: stringPtr(level)}); err != nil {
			t.Errorf("level %q: error = %v", level, err)
		}
	}
	if err := ValidateRequestParams(&RequestParams{ThinkingLevel: stringPtr("extreme")}); err == nil {
		t.Error("invalid thinking level accepted")
	}
}

func TestValidateRequestParams_Penalties(t *testing.T) {
	if err := ValidateRequestParams(&RequestParams{FrequencyPenalty: float64Ptr(-2.0)}); err != nil {
		t.Errorf("frequency penalty -2.0: error = %v", err)
	}
	if err := ValidateRequestParams(&RequestParams{FrequencyPenalty: float64Ptr(2.5)}); err == nil {
		t.Error("frequency penalty 2.5 accepted")
	}
	if err := ValidateRequestParams(&RequestParams{PresencePenalty: float64Ptr(-2.1)}); err == nil {
		t.Error("presence penalty -2.1 accepted")
	}
}

func TestValidateRequestParams_NilParams(t *testing.T) {
	if err := ValidateRequestParams(nil); err != nil {
		t.Errorf("nil params: error = %v", err)
	}
}

func TestValidateRequestParams_InvalidTool(t *testing.T) {
	params := &RequestParams{
		Tools: []Tool{{Type: "function", Function: FunctionDetails{Name: ""}}},
	}
	if err := ValidateRequestParams(params); err == nil {
		t.Error("tool with empty name accepted")
	}
}

func TestGetRequestParamStruct(t *testing.T) {
	params, err := GetRequestParamStruct(map[string]interface{}{
		"max_tokens":  1000,
		"temperature": 0.8,
		"system":      "be helpful",
	})
	if err != nil {
		t.Fatalf("GetRequestParamStruct() error = %v", err)
	}
	if params.GetMaxTokens(0) != 1000 {
		t.Errorf("max tokens = %d", params.GetMaxTokens(0))
	}
	if params.GetTemperature(0) != 0.8 {
		t.Errorf("temperature = %f", params.GetTemperature(0))
	}
	if params.System == nil || *params.System != "be helpful" {
		t.Errorf("system = %v", params.System)
	}

	params, err = GetRequestParamStruct(nil)
	if err != nil || params == nil {
		t.Fatalf("nil map: params = %v, err = %v", params, err)
	}
}

func TestRequestParams_Accessors(t *testing.T) {
	var nilParams *RequestParams
	if got := nilParams.GetMaxTokens(4096); got != 4096 {
		t.Errorf("nil GetMaxTokens = %d", got)
	}
	if got := nilParams.GetTemperature(1.0); got != 1.0 {
		t.Errorf("nil GetTemperature = %f", got)
	}
	if nilParams.ThinkingRequested() {
		t.Error("nil ThinkingRequested = true")
	}
	if nilParams.NameMapping() == nil {
		t.Error("nil NameMapping() = nil, want empty mapping")
	}

	params := &RequestParams{
		MaxTokens:       intPtr(64),
		ThinkingEnabled: boolPtr(true),
	}
	if got := params.GetMaxTokens(4096); got != 64 {
		t.Errorf("GetMaxTokens = %d", got)
	}
	if !params.ThinkingRequested() {
		t.Error("ThinkingRequested = false")
	}
}

func TestGetThinkingBudgetTokens(t *testing.T) {
	tests := []struct {
		level *string
		want  int
	}{
		{nil, 0},
		{stringPtr("low"), 2000},
		{stringPtr("medium"), 5000},
		{stringPtr("high"), 12000},
	}
	for _, tt := range tests {
		params := &RequestParams{ThinkingLevel: tt.level}
		if got := params.GetThinkingBudgetTokens(); got != tt.want {
			t.Errorf("GetThinkingBudgetTokens(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}
