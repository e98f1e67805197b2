package client

import (
	"encoding/json"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/quizforge/go-session"
)

// ErrInvalidBaseURL is returned when the configured API root cannot be parsed.
var ErrInvalidBaseURL = goerrors.New("invalid base URL", goerrors.CategoryBadInput).
	WithTextCode("client_invalid_base_url").
	WithCode(goerrors.CodeBadRequest)

// APIError captures a normalized backend response. Status zero means the
// request produced no response at all (a network failure).
type APIError struct {
	Operation string
	Status    int
	Message   string
	Err       error
	Raw       map[string]any
}

var _ session.BackendError = (*APIError)(nil)

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}

	scope := "api"
	if e.Operation != "" {
		scope = e.Operation
	}

	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Message)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failed: status %d", scope, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode implements session.BackendError.
func (e *APIError) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// Detail implements session.BackendError: the backend's structured detail
// message, verbatim, or empty when the response had none.
func (e *APIError) Detail() string {
	if e == nil {
		return ""
	}
	return e.Message
}

type errorResponse struct {
	Detail any `json:"detail"`
}

// parseErrorDetail extracts the backend's `detail` field. FastAPI-style
// backends send either a string or a list of field errors; only the string
// form is surfaced verbatim, anything else lands in Raw.
func parseErrorDetail(body []byte) (string, map[string]any) {
	if len(body) == 0 {
		return "", nil
	}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Detail == nil {
		return "", nil
	}

	if detail, ok := parsed.Detail.(string); ok {
		return detail, map[string]any{"detail": detail}
	}

	return "", map[string]any{"detail": parsed.Detail}
}
