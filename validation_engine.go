package llmrelay

import (
	"sync"
)

// ValidationEngine runs an ordered list of ValidationRules over outgoing
// requests. Rules only ever produce warnings; nothing here stops a request
// from being sent.
type ValidationEngine struct {
	rules []ValidationRule
	mu    sync.RWMutex
}

var (
	globalValidationEngine     *ValidationEngine
	globalValidationEngineOnce sync.Once
)

// GetValidationEngine returns the global engine, creating it with the
// built-in rules on first use. Custom rules added here apply to every
// subsequent GetValidationWarnings call.
func GetValidationEngine() *ValidationEngine {
	globalValidationEngineOnce.Do(func() {
		globalValidationEngine = &ValidationEngine{}
		globalValidationEngine.registerDefaultRules()
	})
	return globalValidationEngine
}

func (e *ValidationEngine) registerDefaultRules() {
	registry := GetCapabilityRegistry()

	e.AddRule(&ModelValidationRule{registry: registry})
	e.AddRule(&ToolValidationRule{registry: registry})
	e.AddRule(&ThinkingValidationRule{registry: registry})
	e.AddRule(&ParameterValidationRule{registry: registry})
}

// AddRule appends a rule. Rules run in registration order.
func (e *ValidationEngine) AddRule(rule ValidationRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// RemoveRule drops the first rule whose Name matches, reporting whether
// anything was removed.
func (e *ValidationEngine) RemoveRule(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, rule := range e.rules {
		if rule.Name() == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Validate runs every rule against the request and concatenates their
// warnings in rule order.
func (e *ValidationEngine) Validate(provider string, req *ChatRequest) []ValidationWarning {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var warnings []ValidationWarning
	for _, rule := range e.rules {
		warnings = append(warnings, rule.Check(provider, req)...)
	}
	return warnings
}

// GetValidationWarnings checks a request against the global engine and
// returns anything that looks likely to fail or surprise at the provider.
// Warnings are advisory: the request is sent regardless, and the provider's
// own validation remains authoritative. Callers decide whether to surface,
// log, or ignore them.
func GetValidationWarnings(provider string, req *ChatRequest) []ValidationWarning {
	return GetValidationEngine().Validate(provider, req)
}

func filterWarnings(warnings []ValidationWarning, keep func(ValidationWarning) bool) []ValidationWarning {
	out := make([]ValidationWarning, 0, len(warnings))
	for _, w := range warnings {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

// FilterWarningsBySeverity keeps warnings whose severity is in the given set.
func FilterWarningsBySeverity(warnings []ValidationWarning, severities ...Severity) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) bool {
		for _, s := range severities {
			if w.Severity == s {
				return true
			}
		}
		return false
	})
}

// FilterWarningsByCategory keeps warnings whose category is in the given set.
func FilterWarningsByCategory(warnings []ValidationWarning, categories ...string) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) bool {
		for _, c := range categories {
			if w.Category == c {
				return true
			}
		}
		return false
	})
}

// FilterWarningsByCode keeps warnings whose code is in the given set.
func FilterWarningsByCode(warnings []ValidationWarning, codes ...WarningCode) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) bool {
		for _, c := range codes {
			if w.Code == c {
				return true
			}
		}
		return false
	})
}
