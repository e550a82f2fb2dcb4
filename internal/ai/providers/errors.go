package providers

import (
	"fmt"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// ConfigurationError means the requested provider cannot be used at all:
// unknown ID or missing credential. Not retryable without operator action.
type ConfigurationError struct {
	Provider models.AIProvider
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// ProviderError is a failed call to an LLM backend: network error, timeout,
// non-2xx status, or an empty/malformed response envelope. StatusCode is zero
// when the request never got a response.
type ProviderError struct {
	Provider   models.AIProvider
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}
