package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AuthError reports an authentication failure the caller can act on,
// such as rejected credentials or a success body missing its token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RequestError is any non-2xx response from the API. Message holds the
// server-supplied error when the body carried one, otherwise the
// per-endpoint fallback text.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// errorBody matches the service's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func newRequestError(resp *http.Response, fallback string) error {
	msg := fallback
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			msg = body.Error
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: msg}
	}
	return &RequestError{StatusCode: resp.StatusCode, Message: msg}
}
