package llmrelay

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidModel indicates the requested model is not supported by the provider.
	ErrInvalidModel = errors.New("llmrelay: invalid or unsupported model")

	// ErrInvalidAPIKey indicates the API key is missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("llmrelay: invalid API key")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("llmrelay: rate limit exceeded")

	// ErrUnsupportedFeature indicates the requested capability is not available.
	// Examples: embeddings on a chat-only provider, extended thinking on
	// models that don't support it. Raised synchronously, before any network call.
	ErrUnsupportedFeature = errors.New("llmrelay: unsupported feature")

	// ErrInvalidRequest indicates the request parameters are invalid.
	ErrInvalidRequest = errors.New("llmrelay: invalid request")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("llmrelay: provider unavailable")

	// ErrCancelled indicates a caller-initiated abort via CancellationToken
	// or context cancellation. Kept distinct from transport failures so
	// callers can special-case it.
	ErrCancelled = errors.New("llmrelay: cancelled")

	// ErrResponseFormat indicates a structured-output call received text
	// that is not valid JSON, or JSON that does not satisfy the requested shape.
	ErrResponseFormat = errors.New("llmrelay: response format mismatch")
)

// ModelError represents an error related to model validation or availability.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrInvalidModel or ErrUnsupportedFeature)
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model '%s' for provider '%s': %s (%v)", e.Model, e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ValidationError represents an error in request parameter validation.
type ValidationError struct {
	Field  string // The parameter field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped error (usually ErrInvalidRequest)
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for '%s' (value: %v): %s (%v)", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ProviderError represents an error from the underlying provider API or
// transport. Streaming calls surface it as the terminal Error event;
// non-streaming calls return it directly.
type ProviderError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message from provider
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CancelledError represents a caller-initiated abort.
type CancelledError struct {
	Reason string // Reason passed to CancellationToken.Cancel, or ""
}

func (e *CancelledError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("llmrelay: cancelled: %s", e.Reason)
	}
	return "llmrelay: cancelled"
}

func (e *CancelledError) Unwrap() error {
	return ErrCancelled
}

// ResponseFormatError represents a structured-output response that could not
// be decoded into the requested shape.
type ResponseFormatError struct {
	Provider string // The provider name
	Raw      string // The raw response text that failed to decode
	Reason   string // Human-readable explanation
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("provider '%s' response format: %s", e.Provider, e.Reason)
}

func (e *ResponseFormatError) Unwrap() error {
	return ErrResponseFormat
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits, temporary unavailability, network errors, etc.
// Retry policy itself is a caller concern; the library never retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is deliberate, never retry it
	if errors.Is(err, ErrCancelled) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}

	return false
}

// IsInvalidRequest checks if an error indicates invalid request parameters.
// These errors are not retryable and require request changes.
func IsInvalidRequest(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidRequest) {
		return true
	}

	if errors.Is(err, ErrInvalidModel) {
		return true
	}

	if errors.Is(err, ErrUnsupportedFeature) {
		return true
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}

	return false
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		// HTTP 401/403 indicate auth issues
		return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
	}

	return false
}

// IsCancelled checks if an error represents a caller-initiated abort,
// either through a CancellationToken or a cancelled context.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCancelled) {
		return true
	}

	var cancelledErr *CancelledError
	return errors.As(err, &cancelledErr)
}
