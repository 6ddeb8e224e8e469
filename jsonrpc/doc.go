// Package jsonrpc implements a transport-agnostic JSON-RPC 2.0 dispatcher.
//
// This package implements the JSON-RPC 2.0 specification
// (https://www.jsonrpc.org/specification). It operates on payloads that have
// already been decoded from JSON text (map[string]any, []any); reading raw
// request bodies and writing responses belongs to a transport collaborator
// such as the httprpc package.
//
// # Basic Usage
//
// Create a dispatcher, register procedures, and execute decoded payloads:
//
//	d := jsonrpc.NewDispatcher()
//	d.RegisterFunc("sum", func(ctx context.Context, p SumParams) (int, error) {
//	    return p.A + p.B, nil
//	})
//
//	var payload any
//	json.Unmarshal(body, &payload)
//	out, err := d.Execute(ctx, payload)
//
// Execute returns the serialized response, or the empty string when the
// request was a notification (no "id" member).
//
// # Procedure Signatures
//
// Every procedure has this signature:
//
//	func(ctx context.Context, params <StructType>) (result, error)
//
// The params struct declares the procedure's formal parameters. Parameter
// names come from json tags, and a `default` tag holding a JSON literal marks
// a parameter optional:
//
//	type SumParams struct {
//	    A int `json:"a"`
//	    B int `json:"b" default:"0"`
//	}
//
// Parameter descriptors are built once at registration time, never at call
// time. Requests may supply parameters positionally (array) or by name
// (object); named binding fills unsupplied optional parameters from their
// defaults and rejects requests that omit a required name.
//
// # Resolution Tiers
//
// Procedure names resolve through three tiers, first match wins:
//
//	d.RegisterFunc("sum", fn)               // 1. direct callbacks
//	d.Bind("calc.div", &Calc{}, "Divide")   // 2. receiver/method bindings
//	d.Attach(&Clock{})                      // 3. attached receivers, matched
//	                                        //    by literal method name
//
// A binding whose method does not exist on its receiver is treated as a miss
// and resolution falls through to the next tier.
//
// # Error Handling
//
// Validation and binding failures always become JSON-RPC error envelopes with
// the standard codes (-32700, -32600, -32601, -32602, -32603). A procedure
// error is relayed to the client when it is an *Error (which keeps its own
// code, message and data) or when its kind was registered:
//
//	var ErrNoSuchAccount = errors.New("no such account")
//	d.Relay(ErrNoSuchAccount)
//
// A registered kind without an *Error in its chain maps to code -32000 with
// the error text. Any other procedure error propagates out of Execute and is
// fatal to the caller.
//
// ErrUnauthorized and ErrForbidden are out-of-band: they never become error
// envelopes and instead surface as Execute's error return, so a transport can
// translate them into 401/403 style signaling.
//
// # Pre-Invocation Hook
//
// A before-hook runs ahead of every bound or attached procedure, receiving
// the request credentials and the target's receiver and method names:
//
//	d.Before(func(ctx context.Context, creds jsonrpc.Credentials, recv, method string) error {
//	    return store.Verify(creds.Username, creds.Password)
//	})
//
// Hook failures propagate exactly like procedure failures.
package jsonrpc
