package jsonrpc

// Validation of decoded payloads. Both checks are pure: they never consult
// the registries and have no side effects.

// validShape reports whether a decoded payload is a structured container
// (object or array). Scalars, strings and null are malformed at the protocol
// level and map to a parse error.
func validShape(payload any) bool {
	switch payload.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// validateEnvelope checks a single decoded request object against the
// JSON-RPC 2.0 envelope rules. It returns nil when the envelope is valid.
func validateEnvelope(req map[string]any) *Error {
	version, ok := req["jsonrpc"]
	if !ok {
		return errInvalidRequest("jsonrpc member is required")
	}
	if v, ok := version.(string); !ok || v != "2.0" {
		return errInvalidRequest("jsonrpc member must be exactly \"2.0\"")
	}

	method, ok := req["method"]
	if !ok {
		return errInvalidRequest("method member is required")
	}
	if _, ok := method.(string); !ok {
		return errInvalidRequest("method member must be a string")
	}

	if params, ok := req["params"]; ok && params != nil {
		switch params.(type) {
		case map[string]any, []any:
		default:
			return errInvalidRequest("params member must be an array or object")
		}
	}

	return nil
}
