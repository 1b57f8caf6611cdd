package checkout

import "fmt"

// ValidationError is a missing checkout precondition. Recoverable: the user
// corrects the input and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError means a required gateway config value (the public key)
// is absent. The attempt aborts before the widget opens.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Field)
}
