package jsonrpc

import "context"

type credentialsKey struct{}

// withCredentials stores the dispatch credentials in ctx for procedures that
// need the caller identity (for example to issue session tickets).
func withCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext returns the credentials the current request was
// dispatched with. ok is false when the context did not pass through a
// dispatch.
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}
