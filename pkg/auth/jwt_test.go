package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager("secret", "resume-hub", time.Hour, nil)

	token, err := m.Issue("user-1", "recruiter", "r@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "recruiter", claims.Role)
	assert.Equal(t, "r@x.com", claims.Email)
	assert.Equal(t, "resume-hub", claims.Issuer)
	assert.False(t, claims.External)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", "resume-hub", time.Hour, nil)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other", "resume-hub", time.Hour, nil)
		token, err := other.Issue("user-1", "candidate", "")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("secret", "resume-hub", time.Minute, nil)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue("user-1", "candidate", "")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rsa without provider", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		token := signRS256(t, key, "kid-1", "user-1")

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenManager_VerifiesJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(JWKSet{Keys: []JWK{
			{Kid: "enc-1", Kty: "RSA", Use: "enc", N: "AQAB", E: "AQAB"},
			{Kid: "ec-1", Kty: "EC"},
			{
				Kid: "kid-1",
				Kty: "RSA",
				Use: "sig",
				N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			},
		}})
	}))
	defer srv.Close()

	m := NewTokenManager("secret", "resume-hub", time.Hour, NewKeySet(srv.URL))

	claims, err := m.Verify(signRS256(t, key, "kid-1", "ext-user"))
	require.NoError(t, err)
	assert.Equal(t, "ext-user", claims.Subject)
	assert.True(t, claims.External)

	// cached key, no refetch
	_, err = m.Verify(signRS256(t, key, "kid-1", "ext-user"))
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	_, err = m.Verify(signRS256(t, key, "unknown", "ext-user"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// keys not meant for signing are never served
	_, err = m.Verify(signRS256(t, key, "enc-1", "ext-user"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(signRS256(t, key, "", "ext-user"))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 1, hits)
}

func TestKeySet_RefetchesOnRotation(t *testing.T) {
	first, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	second, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var mu sync.Mutex
	current := JWK{Kid: "kid-1", Kty: "RSA", N: base64.RawURLEncoding.EncodeToString(first.N.Bytes()), E: "AQAB"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(JWKSet{Keys: []JWK{current}})
	}))
	defer srv.Close()

	set := NewKeySet(srv.URL)
	set.minRefresh = 0

	pub, err := set.PublicKey("kid-1")
	require.NoError(t, err)
	assert.Equal(t, first.N, pub.N)
	assert.Equal(t, 65537, pub.E)

	mu.Lock()
	current = JWK{Kid: "kid-2", Kty: "RSA", N: base64.RawURLEncoding.EncodeToString(second.N.Bytes()), E: "AQAB"}
	mu.Unlock()
	pub, err = set.PublicKey("kid-2")
	require.NoError(t, err)
	assert.Equal(t, second.N, pub.N)

	_, err = set.PublicKey("kid-1")
	assert.ErrorIs(t, err, errUnknownKid)
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		Role: "candidate",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}
