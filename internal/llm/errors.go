package llm

import "fmt"

// APIError carries the upstream HTTP status and message of a failed
// provider call, so callers can map it onto their own error taxonomy.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Message)
}
