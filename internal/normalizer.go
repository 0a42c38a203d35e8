package internal

import "strings"

// Outcome is the uniform success/failure signal extracted from a backend
// response envelope.
type Outcome struct {
	OK      bool
	Message string
}

// NormalizeResponse reduces the heterogeneous backend envelopes to a single
// ok/message pair.
//
// The response is a failure only when the top-level ok flag is explicitly
// false, or when the first row carries a status field that is not
// (case-insensitively) "ok". A missing status defers to the top-level flag,
// and a missing flag counts as success: absence of an explicit failure
// signal is success.
//
// The message prefers the first row's message, then the top-level message,
// then the caller-supplied fallback. Never panics on malformed input.
func NormalizeResponse(env *Envelope, fallback string) Outcome {
	if env == nil {
		return Outcome{OK: false, Message: fallback}
	}

	ok := true
	if env.OK != nil {
		ok = *env.OK
	}

	message := env.Message

	if row := env.FirstRow(); row != nil {
		if status, found := row["status"].(string); found {
			ok = strings.EqualFold(status, "ok")
		}
		if rowMsg, found := row["message"].(string); found && rowMsg != "" {
			message = rowMsg
		}
	}

	if message == "" {
		message = fallback
	}

	return Outcome{OK: ok, Message: message}
}
