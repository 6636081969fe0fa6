package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// JWK is the subset of an RFC 7517 key that RS256 verification needs.
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet is the document served at a JWKS endpoint.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

var errUnknownKid = errors.New("unknown key id")

// KeySet caches the RSA public keys of an external issuer by kid. A lookup
// miss triggers a refetch, throttled to minRefresh.
type KeySet struct {
	url        string
	client     *http.Client
	minRefresh time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewKeySet(url string) *KeySet {
	return &KeySet{
		url:        url,
		client:     &http.Client{Timeout: 5 * time.Second},
		minRefresh: time.Minute,
	}
}

// PublicKey returns the verification key for kid.
func (s *KeySet) PublicKey(kid string) (*rsa.PublicKey, error) {
	if key := s.lookup(kid); key != nil {
		return key, nil
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	if key := s.lookup(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownKid, kid)
}

func (s *KeySet) lookup(kid string) *rsa.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[kid]
}

func (s *KeySet) refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys != nil && time.Since(s.fetchedAt) < s.minRefresh {
		return nil
	}

	resp, err := s.client.Get(s.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var set JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	s.keys = keys
	s.fetchedAt = time.Now()
	return nil
}

func (k JWK) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, errors.New("malformed rsa key")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
