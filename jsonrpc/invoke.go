package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
)

// Credentials carry the caller identity resolved by a transport collaborator
// (for example from a Basic-Authentication header). They are threaded through
// each dispatch explicitly; the dispatcher holds no credential state.
type Credentials struct {
	Username string
	Password string
}

// BeforeHook runs ahead of every bound or attached procedure. Returning an
// error aborts the invocation; the error then propagates like a procedure
// failure (ErrUnauthorized and ErrForbidden become out-of-band signals).
type BeforeHook func(ctx context.Context, creds Credentials, receiver, method string) error

type targetKind int

const (
	kindCallback targetKind = iota
	kindBound
	kindAttached
)

// target is a resolved procedure: one of the three registry variants behind
// a uniform invoke capability.
type target struct {
	kind     targetKind
	fn       reflect.Value // callback func, or method func with receiver arg
	receiver reflect.Value // valid for bound and attached targets
	recvName string
	method   string
	desc     *descriptor
}

// buildParams materializes the bound values into the procedure's params
// struct. Each value round-trips through JSON so that decoded payload values
// coerce into the declared field types.
func (t *target) buildParams(bound []boundValue) (reflect.Value, *Error) {
	pv := reflect.New(t.desc.paramType)
	for i, b := range bound {
		raw := t.desc.params[i].Default
		if !b.useDefault {
			enc, err := json.Marshal(b.value)
			if err != nil {
				return reflect.Value{}, errInvalidParams(fmt.Sprintf("parameter %q: %v", t.desc.params[i].Name, err))
			}
			raw = enc
		}
		field := pv.Elem().Field(t.desc.fields[i])
		if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
			return reflect.Value{}, errInvalidParams(fmt.Sprintf("parameter %q: %v", t.desc.params[i].Name, err))
		}
	}
	return pv.Elem(), nil
}

// invoke performs a single synchronous call of the target with the bound
// arguments. Bound and attached targets run the before-hook first; hook
// failures abort the call and propagate unchanged.
func (t *target) invoke(ctx context.Context, creds Credentials, hook BeforeHook, bound []boundValue) (result any, err error) {
	if hook != nil && t.kind != kindCallback {
		if err := hook(ctx, creds, t.recvName, t.method); err != nil {
			return nil, err
		}
	}

	params, bindErr := t.buildParams(bound)
	if bindErr != nil {
		return nil, bindErr
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("jsonrpc: panic in %s: %v", t.name(), r)
			err = errInternal("procedure panicked")
		}
	}()

	args := make([]reflect.Value, 0, 3)
	if t.kind != kindCallback {
		args = append(args, t.receiver)
	}
	args = append(args, reflect.ValueOf(ctx), params)

	out := t.fn.Call(args)
	if !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func (t *target) name() string {
	if t.recvName != "" {
		return t.recvName + "." + t.method
	}
	return t.method
}
