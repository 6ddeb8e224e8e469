package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/mnehpets/rpcserve/httprpc"
	"github.com/mnehpets/rpcserve/jsonrpc"
)

var (
	ErrTicketFormat  = errors.New("auth: invalid ticket format")
	ErrTicketInvalid = errors.New("auth: invalid ticket")
	ErrTicketExpired = errors.New("auth: ticket expired")
)

// maxTicketLen bounds the amount of attacker-controlled data we will
// decode/allocate for a ticket value.
const maxTicketLen = 8192

// DefaultAEADKeySize is the key size (in bytes) for the default AEAD
// implementation (chacha20poly1305).
const DefaultAEADKeySize = chacha20poly1305.KeySize

// ticketAAD binds sealed tickets to this use; a ciphertext sealed for any
// other purpose will not open as a ticket.
var ticketAAD = []byte("rpcserve-ticket")

// Principal is the identity sealed inside a ticket.
type Principal struct {
	Username  string    `cbor:"1,keyasint"`
	IssuedAt  time.Time `cbor:"2,keyasint"`
	ExpiresAt time.Time `cbor:"3,keyasint"`
}

// TicketCodec seals and opens session tickets: opaque tokens a client
// presents in place of its credentials after a first authenticated call.
//
// Format: [keyID] "." [sealed_b64] where sealed = nonce || AEAD.Seal.
// Key rotation: Keys holds all accepted keys; KeyID selects the current
// sealing key.
type TicketCodec struct {
	KeyID string
	Keys  map[string][]byte

	// NewAEAD constructs the AEAD used to seal/open tickets.
	// Defaults to chacha20poly1305.NewX.
	NewAEAD func(key []byte) (cipher.AEAD, error)

	// TTL is the ticket lifetime. Defaults to one hour.
	TTL time.Duration
}

// NewTicketCodec creates a codec sealing with keys[keyID] and accepting any
// key in keys.
func NewTicketCodec(keyID string, keys map[string][]byte) (*TicketCodec, error) {
	if len(keys) == 0 {
		return nil, errors.New("auth: ticket keys must not be empty")
	}
	if _, ok := keys[keyID]; !ok {
		return nil, errors.New("auth: ticket keyID not found in keys")
	}
	for id, k := range keys {
		if _, err := chacha20poly1305.NewX(k); err != nil {
			return nil, fmt.Errorf("auth: invalid ticket key %s: %w", id, err)
		}
	}
	return &TicketCodec{KeyID: keyID, Keys: keys}, nil
}

func (c *TicketCodec) newAEAD(key []byte) (cipher.AEAD, error) {
	if c.NewAEAD != nil {
		return c.NewAEAD(key)
	}
	return chacha20poly1305.NewX(key)
}

func (c *TicketCodec) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return time.Hour
}

// Issue seals a fresh ticket for username.
func (c *TicketCodec) Issue(username string) (string, error) {
	now := time.Now()
	plain, err := cbor.Marshal(Principal{
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl()),
	})
	if err != nil {
		return "", fmt.Errorf("auth: encode principal: %w", err)
	}

	key, ok := c.Keys[c.KeyID]
	if !ok {
		return "", errors.New("auth: ticket sealing key missing")
	}
	aead, err := c.newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, plain, ticketAAD)
	return c.KeyID + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open authenticates and decodes a ticket, rejecting expired ones.
func (c *TicketCodec) Open(ticket string) (Principal, error) {
	if len(ticket) == 0 || len(ticket) > maxTicketLen {
		return Principal{}, ErrTicketFormat
	}
	keyID, sealedB64, ok := strings.Cut(ticket, ".")
	if !ok || keyID == "" || sealedB64 == "" {
		return Principal{}, ErrTicketFormat
	}
	key, ok := c.Keys[keyID]
	if !ok {
		return Principal{}, ErrTicketInvalid
	}

	sealed, err := base64.RawURLEncoding.DecodeString(sealedB64)
	if err != nil {
		return Principal{}, ErrTicketFormat
	}

	aead, err := c.newAEAD(key)
	if err != nil {
		return Principal{}, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return Principal{}, ErrTicketFormat
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, ticketAAD)
	if err != nil {
		return Principal{}, ErrTicketInvalid
	}

	var p Principal
	if err := cbor.Unmarshal(plain, &p); err != nil {
		return Principal{}, ErrTicketInvalid
	}
	if time.Now().After(p.ExpiresAt) {
		return Principal{}, ErrTicketExpired
	}
	return p, nil
}

// TicketSource authenticates requests presenting "Authorization: Ticket
// <opaque>". Invalid or expired tickets map to jsonrpc.ErrUnauthorized so
// the transport challenges the client to log in again.
type TicketSource struct {
	Codec *TicketCodec
}

func (s *TicketSource) Credentials(r *http.Request) (jsonrpc.Credentials, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Ticket ")
	if !ok {
		return jsonrpc.Credentials{}, httprpc.ErrNoCredentials
	}
	p, err := s.Codec.Open(raw)
	if err != nil {
		return jsonrpc.Credentials{}, fmt.Errorf("%v: %w", err, jsonrpc.ErrUnauthorized)
	}
	return jsonrpc.Credentials{Username: p.Username}, nil
}
