// Package comm implements a typed RPC-over-channel client: correlated
// request/response calls and named push events multiplexed over a single
// bidirectional message channel, using JSON-RPC 2.0 envelopes.
package comm

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC version tag carried by every envelope.
const Version = "2.0"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Kind classifies an envelope.
type Kind int

const (
	KindInvalid Kind = iota
	KindRequest
	KindResponse
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	default:
		return "invalid"
	}
}

// Envelope is one message on the wire. Requests carry ID and Method,
// responses carry ID and one of Result or Error, events carry Method only.
type Envelope struct {
	Version string          `json:"jsonrpc"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RemoteError    `json:"error,omitempty"`
}

// Kind reports what sort of message the envelope is.
func (e *Envelope) Kind() Kind {
	switch {
	case e == nil:
		return KindInvalid
	case e.ID != "" && e.Method != "":
		return KindRequest
	case e.ID != "":
		return KindResponse
	case e.Method != "":
		return KindEvent
	default:
		return KindInvalid
	}
}

// NewRequest builds a request envelope.
func NewRequest(id, method string, params any) (*Envelope, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params for %s: %w", method, err)
	}
	return &Envelope{Version: Version, ID: id, Method: method, Params: raw}, nil
}

// NewEvent builds an event envelope.
func NewEvent(name string, params any) (*Envelope, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params for event %s: %w", name, err)
	}
	return &Envelope{Version: Version, Method: name, Params: raw}, nil
}

// NewResult builds a success response. A nil result is sent as JSON null.
func NewResult(id string, result any) (*Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result for %s: %w", id, err)
	}
	return &Envelope{Version: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id string, rerr *RemoteError) *Envelope {
	return &Envelope{Version: Version, ID: id, Error: rerr}
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(params)
}
