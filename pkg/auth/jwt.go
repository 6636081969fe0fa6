package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the principal. Subject holds the user id.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims

	// External is set for RS256 tokens verified against the JWKS key set.
	External bool `json:"-"`
}

// TokenManager issues HS256 access tokens and verifies HS256 or, when a JWKS
// key set is configured, RS256 tokens from an external identity provider.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	jwks   *KeySet
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration, jwks *KeySet) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		jwks:   jwks,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(userID, role, email string) (string, error) {
	now := m.now()
	claims := Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	_, claims.External = token.Method.(*jwt.SigningMethodRSA)
	return claims, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return m.secret, nil
	case *jwt.SigningMethodRSA:
		if m.jwks == nil {
			return nil, errors.New("rsa tokens require a JWKS key set")
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("rsa token without kid")
		}
		return m.jwks.PublicKey(kid)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}
