package comm

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnmatchedResponse marks a response whose id has no pending call.
	// It is only ever logged; no caller holds a handle to such a response.
	ErrUnmatchedResponse = errors.New("comm: unmatched response")
	// ErrClosed is returned for calls on, or pending in, a closed client.
	ErrClosed = errors.New("comm: client closed")
	// ErrParamMismatch is returned when parameter names and values differ in length.
	ErrParamMismatch = errors.New("comm: parameter names and values differ in length")
)

// RemoteError is the error payload of a response. It is returned to the
// caller verbatim.
type RemoteError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("[json-rpc-error: %v] %v", e.Code, e.Message)
}

// Errorf builds a RemoteError with a formatted message.
func Errorf(code int, format string, args ...any) *RemoteError {
	return &RemoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}
