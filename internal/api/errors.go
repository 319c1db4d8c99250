package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionExpired reports that the access token was rejected and could not
// be refreshed. The session store has already been cleared by the time this
// is returned; views should redirect to login.
var ErrSessionExpired = errors.New("session expired")

// Error is a non-auth failure response from the remote API: validation
// errors, not-found, server errors. It is never retried.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// decodeError turns a non-2xx response into an *Error, pulling out the {error}
// message or per-field validation errors where the body carries them.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	for key, raw := range payload {
		text := flatten(raw)
		if text == "" {
			continue
		}
		if key == "error" || key == "detail" {
			apiErr.Message = text
			continue
		}
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string]string)
		}
		apiErr.Fields[key] = text
	}
	return apiErr
}

// flatten renders a string or list-of-strings JSON value as one message, the
// two shapes the API uses for error details.
func flatten(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

// Message extracts user-presentable text from a client error, with a generic
// fallback for network failures and anything unexpected.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if len(apiErr.Fields) > 0 {
			parts := make([]string, 0, len(apiErr.Fields))
			for field, text := range apiErr.Fields {
				parts = append(parts, field+": "+text)
			}
			sort.Strings(parts)
			return strings.Join(parts, "; ")
		}
		if apiErr.NotFound() {
			return "Not found"
		}
		return fmt.Sprintf("Request failed (status %d)", apiErr.Status)
	}
	return "Something went wrong, please try again"
}
