// Package auth provides credential collaborators for rpcserve transports:
// Basic-Authentication header extraction, a bcrypt-backed user store for the
// dispatcher's before-hook, OIDC bearer-token verification, OAuth2
// password-grant delegation, and sealed session tickets.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mnehpets/rpcserve/httprpc"
	"github.com/mnehpets/rpcserve/jsonrpc"
)

// Basic extracts credentials from the Authorization Basic header. It does no
// verification; pair it with a UserStore hook on the dispatcher.
type Basic struct{}

func (Basic) Credentials(r *http.Request) (jsonrpc.Credentials, error) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return jsonrpc.Credentials{}, httprpc.ErrNoCredentials
	}
	return jsonrpc.Credentials{Username: user, Password: pass}, nil
}

// dummyHash is compared against when the username is unknown, so that lookup
// misses cost the same as a password mismatch.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// UserStore verifies username/password pairs against bcrypt hashes. It is
// populated during setup and read-only afterwards.
type UserStore struct {
	users map[string][]byte
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string][]byte)}
}

// Add hashes password with the default bcrypt cost and stores it for
// username.
func (s *UserStore) Add(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password for %s: %w", username, err)
	}
	s.users[username] = hash
	return nil
}

// AddHash stores a pre-computed bcrypt hash for username, e.g. one loaded
// from an htpasswd-style file.
func (s *UserStore) AddHash(username string, hash []byte) {
	s.users[username] = hash
}

// Verify checks the pair against the store. Unknown users and wrong
// passwords both report jsonrpc.ErrUnauthorized.
func (s *UserStore) Verify(username, password string) error {
	hash, ok := s.users[username]
	if !ok {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return jsonrpc.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return jsonrpc.ErrUnauthorized
	}
	return nil
}

// ACL restricts receivers to named users. A receiver absent from the map is
// open to any authenticated user.
type ACL map[string][]string

// Check reports jsonrpc.ErrForbidden when username may not call methods on
// receiver.
func (a ACL) Check(username, receiver string) error {
	allowed, ok := a[receiver]
	if !ok {
		return nil
	}
	for _, u := range allowed {
		if u == username {
			return nil
		}
	}
	return jsonrpc.ErrForbidden
}

// Hook builds a dispatcher before-hook that verifies credentials against
// store and then applies acl. Either argument may be nil to skip that check.
func Hook(store *UserStore, acl ACL) jsonrpc.BeforeHook {
	return func(ctx context.Context, creds jsonrpc.Credentials, receiver, method string) error {
		if store != nil {
			if err := store.Verify(creds.Username, creds.Password); err != nil {
				return err
			}
		}
		if acl != nil {
			if err := acl.Check(creds.Username, receiver); err != nil {
				return err
			}
		}
		return nil
	}
}
