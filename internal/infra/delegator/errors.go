// File: internal/infra/delegator/errors.go
package delegator

import (
	"encoding/json"
	"fmt"
)

// extractErrorMessage pulls a human-readable message out of a worker error
// body. The worker is FastAPI-shaped: errors usually arrive as {"detail":
// ...}, sometimes {"message": ...}; anything else is returned verbatim.
func extractErrorMessage(body []byte, statusCode int) string {
	if len(body) == 0 {
		return fmt.Sprintf("ai worker call failed (status=%d)", statusCode)
	}

	var node map[string]json.RawMessage
	if err := json.Unmarshal(body, &node); err != nil {
		return string(body)
	}

	if detail, ok := node["detail"]; ok {
		var s string
		if err := json.Unmarshal(detail, &s); err == nil {
			return s
		}
		return string(detail)
	}
	if msg, ok := node["message"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			return s
		}
	}
	return string(body)
}
