package jsonrpc

import "fmt"

// boundValue is one bound formal parameter. Either the request supplied a
// value, or the parameter falls back to its registered default.
type boundValue struct {
	value      any
	useDefault bool
}

// bindParams matches a request's parameter set against a procedure's
// descriptor and returns one bound value per formal parameter, in declaration
// order. params is the decoded "params" member: a []any for positional
// calls, a map[string]any for named calls, or nil when absent.
func bindParams(params any, desc *descriptor) ([]boundValue, *Error) {
	var positional []any
	var named map[string]any

	switch p := params.(type) {
	case nil:
		positional = nil
	case []any:
		positional = p
	case map[string]any:
		named = p
	default:
		return nil, errInvalidParams("params must be an array or object")
	}

	count := len(positional)
	if named != nil {
		count = len(named)
	}
	if count < desc.required {
		return nil, errInvalidParams(fmt.Sprintf("wrong number of arguments: got %d, want at least %d", count, desc.required))
	}
	if count > desc.max() {
		return nil, errInvalidParams(fmt.Sprintf("too many arguments: got %d, max %d", count, desc.max()))
	}

	bound := make([]boundValue, len(desc.params))

	if named == nil {
		// Positional: align by position, trailing parameters fall back to
		// their defaults. The arity check above guarantees every parameter
		// past the supplied count has one.
		for i := range desc.params {
			if i < len(positional) {
				bound[i] = boundValue{value: positional[i]}
			} else {
				bound[i] = boundValue{useDefault: true}
			}
		}
		return bound, nil
	}

	for i, p := range desc.params {
		if v, ok := named[p.Name]; ok {
			bound[i] = boundValue{value: v}
			continue
		}
		if p.HasDefault {
			bound[i] = boundValue{useDefault: true}
			continue
		}
		return nil, errInvalidParams(fmt.Sprintf("missing named argument %q", p.Name))
	}
	return bound, nil
}
