package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/oauth2"

	"github.com/mnehpets/rpcserve/httprpc"
	"github.com/mnehpets/rpcserve/jsonrpc"
)

// oidcFixture is a minimal identity provider: a JWKS endpoint plus a signer
// for minting ID tokens against it.
type oidcFixture struct {
	issuer   string
	server   *httptest.Server
	signer   jose.Signer
	verifier *oidc.IDTokenVerifier
}

func newOIDCFixture(t *testing.T) *oidcFixture {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: privKey}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		jwk := jose.JSONWebKey{Key: &privKey.PublicKey, Use: "sig", Algorithm: "RS256", KeyID: "test-key"}
		json.NewEncoder(w).Encode(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{jwk}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	keySet := oidc.NewRemoteKeySet(context.Background(), server.URL+"/keys")
	verifier := oidc.NewVerifier(server.URL, keySet, &oidc.Config{ClientID: "client-id"})

	return &oidcFixture{issuer: server.URL, server: server, signer: signer, verifier: verifier}
}

func (f *oidcFixture) mintToken(t *testing.T, subject string, extra map[string]any) string {
	t.Helper()
	claims := jwt.Claims{
		Subject:   subject,
		Issuer:    f.issuer,
		Audience:  jwt.Audience{"client-id"},
		Expiry:    jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
	}
	builder := jwt.Signed(f.signer).Claims(claims)
	if extra != nil {
		builder = builder.Claims(extra)
	}
	raw, err := builder.Serialize()
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return raw
}

func TestBearerSourceVerifiesToken(t *testing.T) {
	f := newOIDCFixture(t)
	source := &BearerSource{Verifier: f.verifier}

	r := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	r.Header.Set("Authorization", "Bearer "+f.mintToken(t, "user123", nil))

	creds, err := source.Credentials(r)
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Username != "user123" {
		t.Errorf("username = %q, want user123", creds.Username)
	}
	if creds.Password != "" {
		t.Error("bearer credentials must be password-less")
	}
}

func TestBearerSourceClaimSelection(t *testing.T) {
	f := newOIDCFixture(t)
	source := &BearerSource{Verifier: f.verifier, Claim: "email"}

	r := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	r.Header.Set("Authorization", "Bearer "+f.mintToken(t, "user123", map[string]any{"email": "alice@example.com"}))

	creds, err := source.Credentials(r)
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Username != "alice@example.com" {
		t.Errorf("username = %q, want alice@example.com", creds.Username)
	}

	// Token without the configured claim is rejected.
	r = httptest.NewRequest(http.MethodPost, "/rpc", nil)
	r.Header.Set("Authorization", "Bearer "+f.mintToken(t, "user123", nil))
	if _, err := source.Credentials(r); !errors.Is(err, jsonrpc.ErrUnauthorized) {
		t.Errorf("missing claim = %v, want ErrUnauthorized", err)
	}
}

func TestBearerSourceRejectsGarbage(t *testing.T) {
	f := newOIDCFixture(t)
	source := &BearerSource{Verifier: f.verifier}

	r := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	if _, err := source.Credentials(r); !errors.Is(err, jsonrpc.ErrUnauthorized) {
		t.Errorf("garbage token = %v, want ErrUnauthorized", err)
	}
}

func TestBearerSourceNoHeader(t *testing.T) {
	f := newOIDCFixture(t)
	source := &BearerSource{Verifier: f.verifier}

	r := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	if _, err := source.Credentials(r); !errors.Is(err, httprpc.ErrNoCredentials) {
		t.Errorf("no header = %v, want ErrNoCredentials", err)
	}
}

func TestPasswordGrant(t *testing.T) {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "password" ||
			r.PostForm.Get("username") != "alice" ||
			r.PostForm.Get("password") != "s3cret" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	server := httptest.NewServer(token)
	defer server.Close()

	grant := &PasswordGrant{Config: &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: server.URL},
	}}

	ctx := context.Background()
	if err := grant.Verify(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("Verify(correct) = %v, want nil", err)
	}
	if err := grant.Verify(ctx, "alice", "wrong"); !errors.Is(err, jsonrpc.ErrUnauthorized) {
		t.Errorf("Verify(wrong) = %v, want ErrUnauthorized", err)
	}

	hook := grant.Hook()
	if err := hook(ctx, jsonrpc.Credentials{Username: "alice", Password: "s3cret"}, "Any", "Do"); err != nil {
		t.Errorf("hook(correct) = %v, want nil", err)
	}
}
