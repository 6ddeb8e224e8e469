package jsonrpc

import (
	"context"
	"errors"
	"strings"
)

// Dispatcher validates, resolves and invokes JSON-RPC 2.0 requests against
// its registries. Registries are populated during setup and must not be
// mutated once dispatching starts; dispatching itself keeps no per-request
// state on the Dispatcher, so a single instance serves concurrent callers.
type Dispatcher struct {
	callbacks map[string]*target
	bindings  map[string]*target // nil entry: bound method missing, resolution miss
	attached  []*attachedReceiver
	relayed   []error
	before    BeforeHook
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		callbacks: make(map[string]*target),
		bindings:  make(map[string]*target),
	}
}

// Relay registers error kinds that procedures may surface to clients as
// JSON-RPC application errors. A procedure error matching a registered kind
// (via errors.Is) becomes an error envelope; any other procedure error is
// fatal and propagates out of Execute.
func (d *Dispatcher) Relay(kinds ...error) {
	d.relayed = append(d.relayed, kinds...)
}

// Before configures the pre-invocation hook.
func (d *Dispatcher) Before(hook BeforeHook) {
	d.before = hook
}

// Execute dispatches a decoded payload with empty credentials.
func (d *Dispatcher) Execute(ctx context.Context, payload any) (string, error) {
	return d.ExecuteAs(ctx, Credentials{}, payload)
}

// ExecuteAs dispatches a decoded payload, a single request object or a batch
// array, and returns the serialized response. The empty string means no
// response is owed (a notification, or a batch of only notifications).
//
// A non-nil error is out-of-band: either an authentication failure
// (ErrUnauthorized, ErrForbidden) or a procedure error whose kind was not
// registered for relay. No response string accompanies it; translating it
// into transport-level signaling is the caller's job.
func (d *Dispatcher) ExecuteAs(ctx context.Context, creds Credentials, payload any) (string, error) {
	ctx = withCredentials(ctx, creds)

	if !validShape(payload) {
		return buildNullIDResponse(errParse("payload must be an object or array")), nil
	}

	if batch, ok := payload.([]any); ok {
		return d.executeBatch(ctx, creds, batch)
	}

	return d.executeSingle(ctx, creds, payload.(map[string]any))
}

// executeBatch processes batch elements sequentially in array order. Each
// element dispatches against the same shared registries with only the
// element itself as payload, so parameter state cannot leak between
// sub-requests. Responses keep the order of their originating requests;
// notifications contribute nothing.
func (d *Dispatcher) executeBatch(ctx context.Context, creds Credentials, batch []any) (string, error) {
	if len(batch) == 0 {
		return buildNullIDResponse(errInvalidRequest("batch must contain at least one request")), nil
	}

	var outs []string
	for _, elem := range batch {
		req, ok := elem.(map[string]any)
		if !ok {
			outs = append(outs, buildNullIDResponse(errInvalidRequest("batch element must be a request object")))
			continue
		}
		out, err := d.executeSingle(ctx, creds, req)
		if err != nil {
			return "", err
		}
		if out != "" {
			outs = append(outs, out)
		}
	}

	if len(outs) == 0 {
		return "", nil
	}
	return "[" + strings.Join(outs, ",") + "]", nil
}

// executeSingle runs the dispatch state machine for one request object:
// envelope check, resolution, binding, invocation, response assembly. Until
// the envelope is valid the error response echoes a null id; past that point
// every response echoes the request's real id.
func (d *Dispatcher) executeSingle(ctx context.Context, creds Credentials, req map[string]any) (string, error) {
	if verr := validateEnvelope(req); verr != nil {
		return buildNullIDResponse(verr), nil
	}

	method := req["method"].(string)

	t, rerr := d.resolve(method)
	if rerr != nil {
		return buildResponse(nil, rerr, req), nil
	}

	bound, berr := bindParams(req["params"], t.desc)
	if berr != nil {
		return buildResponse(nil, berr, req), nil
	}

	result, err := t.invoke(ctx, creds, d.before, bound)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
			return "", err
		}
		if relayed := d.relayable(err); relayed != nil {
			return buildResponse(nil, relayed, req), nil
		}
		return "", err
	}

	return buildResponse(&result, nil, req), nil
}

// relayable classifies a procedure failure. An *Error anywhere in the chain
// relays with its own code, message and data. Otherwise the registered kinds
// are scanned in registration order and a match relays as a generic server
// error carrying the error text. Nil means the failure is fatal.
func (d *Dispatcher) relayable(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	for _, kind := range d.relayed {
		if errors.Is(err, kind) {
			return &Error{Code: CodeServerError, Message: err.Error()}
		}
	}
	return nil
}
