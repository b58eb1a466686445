package authapi

import (
	"encoding/json"
	"sort"

	"github.com/jrsteele09/resume-matcher-client/internal/utils"
)

// FallbackLoginMessage is used when a failed login carries no readable message.
const FallbackLoginMessage = "Login failed"

// ErrorResponse is the error body written by the backend (and the stub).
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrorMessage extracts the most specific message from an error body:
// "detail", then "error", then the first "non_field_errors" entry, then the
// first field-level validation error (fields in name order), else fallback.
func ErrorMessage(body []byte, fallback string) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}

	for _, key := range []string{"detail", "error"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}

	if msg := firstString(fields["non_field_errors"]); msg != "" {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstString(fields[k]); msg != "" {
			return msg
		}
	}
	return fallback
}

func firstString(v any) string {
	return utils.FirstNonEmpty(utils.Strings(v)...)
}
