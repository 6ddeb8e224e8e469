package jsonrpc

import "errors"

// JSON-RPC 2.0 protocol error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000
)

// Canonical messages for the protocol error codes.
const (
	msgParseError     = "Parse error"
	msgInvalidRequest = "Invalid Request"
	msgMethodNotFound = "Method not found"
	msgInvalidParams  = "Invalid params"
	msgInternalError  = "Internal error"
)

// Out-of-band failures. A transport translates these into its own status
// signaling (401/403 for HTTP); they never become a JSON-RPC error envelope.
var (
	ErrUnauthorized = errors.New("jsonrpc: authentication required")
	ErrForbidden    = errors.New("jsonrpc: access forbidden")
)

// Error is a JSON-RPC error object. Procedures return an *Error to control
// the code, message and data the client sees; it relays without needing
// registration via Dispatcher.Relay.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates an Error with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithData returns a copy of e carrying data in the error object's data
// member.
func (e *Error) WithData(data any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Data: data, cause: e.cause}
}

// Wrap returns a copy of e whose error chain includes cause, so errors.Is can
// match a relayed kind through it.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Data: e.Data, cause: cause}
}

func errParse(detail string) *Error {
	return &Error{Code: CodeParseError, Message: msgParseError, Data: detail}
}

func errInvalidRequest(detail string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msgInvalidRequest, Data: detail}
}

func errMethodNotFound() *Error {
	return &Error{Code: CodeMethodNotFound, Message: msgMethodNotFound}
}

func errInvalidParams(detail string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msgInvalidParams, Data: detail}
}

func errInternal(detail string) *Error {
	return &Error{Code: CodeInternalError, Message: msgInternalError, Data: detail}
}
