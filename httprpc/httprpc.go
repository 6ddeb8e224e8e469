// Package httprpc serves a jsonrpc.Dispatcher over HTTP.
//
// The handler owns everything the dispatcher treats as external: reading and
// decoding the raw request body, resolving caller credentials from headers,
// and translating the dispatcher's out-of-band failures into HTTP status
// codes (401 for authentication failures, 403 for forbidden access).
//
// Per JSON-RPC over HTTP, requests must be POSTs with an application/json
// Content-Type. A dispatch that produces no response body (a notification,
// or a batch of only notifications) answers 204 No Content.
package httprpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/mnehpets/rpcserve/jsonrpc"
)

// maxBodyBytes bounds the request body size accepted from clients.
const maxBodyBytes = 4 << 20 // 4MB

// CredentialSource resolves the caller's credentials from a request. A
// source that finds no credential material at all returns ErrNoCredentials
// so the handler can distinguish "anonymous" from "rejected".
type CredentialSource interface {
	Credentials(r *http.Request) (jsonrpc.Credentials, error)
}

// ErrNoCredentials is returned by credential sources when the request
// carries no credential material for them.
var ErrNoCredentials = errors.New("httprpc: no credentials presented")

// Handler is an http.Handler that dispatches JSON-RPC request bodies.
type Handler struct {
	// Dispatcher executes decoded payloads. Required.
	Dispatcher *jsonrpc.Dispatcher

	// Source resolves request credentials. Nil dispatches anonymously.
	Source CredentialSource

	// RequireAuth rejects requests whose source finds no credentials.
	RequireAuth bool

	// Realm is the authentication realm advertised on 401 responses.
	// Empty defaults to "rpc".
	Realm string
}

// NewHandler creates a Handler for d with no credential source.
func NewHandler(d *jsonrpc.Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "JSON-RPC requires POST", http.StatusMethodNotAllowed)
		return
	}

	// Per JSON-RPC over HTTP, Content-Type must be application/json when set.
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeBody(w, jsonrpc.ParseErrorResponse(err.Error()))
		return
	}

	creds, err := h.resolveCredentials(r)
	if err != nil {
		h.writeAuthFailure(w, err)
		return
	}

	out, err := h.Dispatcher.ExecuteAs(r.Context(), creds, payload)
	switch {
	case errors.Is(err, jsonrpc.ErrUnauthorized) || errors.Is(err, jsonrpc.ErrForbidden):
		h.writeAuthFailure(w, err)
		return
	case err != nil:
		log.Printf("httprpc: dispatch failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if out == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeBody(w, out)
}

func (h *Handler) resolveCredentials(r *http.Request) (jsonrpc.Credentials, error) {
	if h.Source == nil {
		return jsonrpc.Credentials{}, nil
	}
	creds, err := h.Source.Credentials(r)
	if errors.Is(err, ErrNoCredentials) {
		if h.RequireAuth {
			return jsonrpc.Credentials{}, jsonrpc.ErrUnauthorized
		}
		return jsonrpc.Credentials{}, nil
	}
	return creds, err
}

// writeAuthFailure translates the dispatcher's out-of-band signals into the
// corresponding HTTP status. Anything that is not explicitly forbidden is an
// authentication challenge.
func (h *Handler) writeAuthFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, jsonrpc.ErrForbidden) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	realm := h.Realm
	if realm == "" {
		realm = "rpc"
	}
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
	http.Error(w, "authentication required", http.StatusUnauthorized)
}

func (h *Handler) writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// SourceFunc adapts a function to a CredentialSource.
type SourceFunc func(r *http.Request) (jsonrpc.Credentials, error)

func (f SourceFunc) Credentials(r *http.Request) (jsonrpc.Credentials, error) {
	return f(r)
}

// ChainSources tries each source in order and returns the first that finds
// credentials. A source error other than ErrNoCredentials stops the chain.
func ChainSources(sources ...CredentialSource) CredentialSource {
	return SourceFunc(func(r *http.Request) (jsonrpc.Credentials, error) {
		for _, s := range sources {
			creds, err := s.Credentials(r)
			if errors.Is(err, ErrNoCredentials) {
				continue
			}
			return creds, err
		}
		return jsonrpc.Credentials{}, ErrNoCredentials
	})
}
