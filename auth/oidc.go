package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/mnehpets/rpcserve/httprpc"
	"github.com/mnehpets/rpcserve/jsonrpc"
)

// BearerSource authenticates requests carrying an OIDC ID token in the
// Authorization Bearer header. Verified tokens map to password-less
// credentials whose username is the token subject (or a configured claim).
type BearerSource struct {
	Verifier *oidc.IDTokenVerifier

	// Claim names the identity claim to use as the username. Empty uses
	// the token subject.
	Claim string
}

func (s *BearerSource) Credentials(r *http.Request) (jsonrpc.Credentials, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return jsonrpc.Credentials{}, httprpc.ErrNoCredentials
	}

	token, err := s.Verifier.Verify(r.Context(), raw)
	if err != nil {
		return jsonrpc.Credentials{}, fmt.Errorf("auth: token verification: %v: %w", err, jsonrpc.ErrUnauthorized)
	}

	username := token.Subject
	if s.Claim != "" {
		var claims map[string]any
		if err := token.Claims(&claims); err != nil {
			return jsonrpc.Credentials{}, fmt.Errorf("auth: token claims: %v: %w", err, jsonrpc.ErrUnauthorized)
		}
		v, ok := claims[s.Claim].(string)
		if !ok || v == "" {
			return jsonrpc.Credentials{}, fmt.Errorf("auth: token missing %q claim: %w", s.Claim, jsonrpc.ErrUnauthorized)
		}
		username = v
	}

	return jsonrpc.Credentials{Username: username}, nil
}

// PasswordGrant verifies username/password pairs by delegating to an OAuth2
// resource-owner password grant, for deployments where the identity provider
// rather than a local store owns the accounts.
type PasswordGrant struct {
	Config *oauth2.Config
}

// Verify exchanges the pair for a token at the provider. Any rejection maps
// to jsonrpc.ErrUnauthorized.
func (p *PasswordGrant) Verify(ctx context.Context, username, password string) error {
	if _, err := p.Config.PasswordCredentialsToken(ctx, username, password); err != nil {
		return fmt.Errorf("auth: password grant: %v: %w", err, jsonrpc.ErrUnauthorized)
	}
	return nil
}

// Hook adapts the grant into a dispatcher before-hook.
func (p *PasswordGrant) Hook() jsonrpc.BeforeHook {
	return func(ctx context.Context, creds jsonrpc.Credentials, receiver, method string) error {
		return p.Verify(ctx, creds.Username, creds.Password)
	}
}
