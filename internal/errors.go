package internal

import "fmt"

// Fallback messages when the backend gives none
const (
	FallbackErrorMessage  = "La operación no pudo completarse"
	FallbackListErrorMsg  = "No fue posible obtener el listado"
	FallbackFetchErrorMsg = "No fue posible obtener el registro"
)

// SessionError represents a precondition failure detected before any
// network call: missing session, unresolvable target, missing required field.
type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error: %s", e.Reason)
}

// BackendError represents an operation the backend explicitly marked as
// failed (normalized ok=false), carrying the backend's message.
type BackendError struct {
	Endpoint string
	Message  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error [%s]: %s", e.Endpoint, e.Message)
}

// GatewayError represents transport or response-parse failures
type GatewayError struct {
	Endpoint string
	Op       string // "request", "send", "decode"
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// StorageError represents overlay-cache persistence failures. These are
// never surfaced to callers; the overlay swallows them and degrades to an
// empty cache or a no-op write.
type StorageError struct {
	Key string
	Op  string // "get", "set", "delete"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// humanMessage reduces an error to a best-effort display string: the
// backend's own message when present, a fixed fallback otherwise.
func humanMessage(err error, fallback string) string {
	switch e := err.(type) {
	case *BackendError:
		if e.Message != "" {
			return e.Message
		}
	case *SessionError:
		return e.Reason
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
