package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ExternalServiceError is a worker failure surfaced to the caller: a non-2xx
// response or a transport error. StatusCode is 0 for transport failures.
type ExternalServiceError struct {
	StatusCode int
	Message    string
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("ai worker unreachable: %s", e.Message)
	}
	return fmt.Sprintf("ai worker error (status=%d): %s", e.StatusCode, e.Message)
}

// IsWaitingForAnswer recognizes the worker's overloaded error channel: a 400
// whose message says the session is waiting for an answer is not a failure,
// it is a normal protocol state. The worker has no structured code for this,
// so the match is on the message text; if its wording changes, detection
// silently breaks.
func IsWaitingForAnswer(err error) bool {
	var ext *ExternalServiceError
	if !errors.As(err, &ext) {
		return false
	}
	return ext.StatusCode == http.StatusBadRequest &&
		strings.Contains(ext.Message, "Waiting for answer")
}
