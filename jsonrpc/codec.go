package jsonrpc

import (
	"encoding/json"
	"errors"
)

// responseEnvelope is the wire shape of a JSON-RPC response. Result is a
// pointer so that a procedure legitimately returning null still produces a
// "result" member on success.
type responseEnvelope struct {
	Jsonrpc string `json:"jsonrpc"`
	Result  *any   `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id"`
}

// encodeEnvelope merges a result or error payload with the protocol-required
// members and serializes it. A serialization failure comes back as a -32603
// Error carrying a human-readable reason.
func encodeEnvelope(result *any, errObj *Error, id any) (string, *Error) {
	body, err := json.Marshal(&responseEnvelope{
		Jsonrpc: "2.0",
		Result:  result,
		Error:   errObj,
		ID:      id,
	})
	if err != nil {
		return "", errInternal("response encoding failed: " + encodingReason(err))
	}
	return string(body), nil
}

// encodingReason derives a short reason from the encoder's failure kind.
func encodingReason(err error) string {
	var typeErr *json.UnsupportedTypeError
	if errors.As(err, &typeErr) {
		return "unsupported type " + typeErr.Type.String()
	}
	var valueErr *json.UnsupportedValueError
	if errors.As(err, &valueErr) {
		return "unsupported value " + valueErr.Str
	}
	var marshalerErr *json.MarshalerError
	if errors.As(err, &marshalerErr) {
		return "marshaler failed for " + marshalerErr.Type.String()
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "syntax error in pre-encoded value"
	}
	return "unknown encoding failure"
}

// buildResponse encodes a response correlated to the originating request.
// A request without an "id" member is a notification and produces no output.
// If the result itself cannot be serialized, the response degrades to a
// -32603 envelope echoing the same id.
func buildResponse(result *any, errObj *Error, req map[string]any) string {
	id, hasID := req["id"]
	if !hasID {
		return ""
	}
	out, encErr := encodeEnvelope(result, errObj, id)
	if encErr != nil {
		out, _ = encodeEnvelope(nil, encErr, id)
	}
	return out
}

// buildNullIDResponse encodes an error response with a null id, used before
// the envelope is valid enough for the real id to be trusted. It always
// produces output, notification or not.
func buildNullIDResponse(errObj *Error) string {
	out, _ := encodeEnvelope(nil, errObj, nil)
	return out
}

// ParseErrorResponse builds a -32700 response with a null id. Transports use
// it when the raw body fails to decode before the dispatcher is ever
// involved.
func ParseErrorResponse(detail string) string {
	return buildNullIDResponse(errParse(detail))
}
