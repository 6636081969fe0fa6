package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(nil))
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		p, _ := domain.PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	return r
}

func get(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*auth.Claims, error) {
	return s.claims, s.err
}

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *mockAuthUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthUsecase) EnsureUserExists(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func claimsFor(subject string, external bool) *auth.Claims {
	return &auth.Claims{
		Role:             "recruiter",
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		External:         external,
	}
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		w := get(newEngine(AuthMiddleware(stubVerifier{}, uc)), nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body response.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperror.KindAuth, body.Error)
		uc.AssertNotCalled(t, "GetCurrentUser", mock.Anything, mock.Anything)
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		w := get(newEngine(AuthMiddleware(stubVerifier{err: auth.ErrInvalidToken}, uc)), bearer("x"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		uc.On("GetCurrentUser", mock.Anything, "u1").
			Return(&domain.User{ID: "u1", Role: domain.RoleCandidate}, nil)

		w := get(newEngine(AuthMiddleware(stubVerifier{claims: claimsFor("u1", false)}, uc)), bearer("t"))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u1","role":"candidate"}`, w.Body.String())
		uc.AssertExpectations(t)
	})

	t.Run("external users are provisioned", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		uc.On("EnsureUserExists", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.ID == "ext-1" })).
			Return(&domain.User{ID: "ext-1", Role: domain.RoleRecruiter}, nil)

		w := get(newEngine(AuthMiddleware(stubVerifier{claims: claimsFor("ext-1", true)}, uc)), bearer("t"))

		require.Equal(t, http.StatusOK, w.Code)
		uc.AssertNotCalled(t, "GetCurrentUser", mock.Anything, mock.Anything)
	})

	t.Run("cookie token", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		uc.On("GetCurrentUser", mock.Anything, "u1").
			Return(&domain.User{ID: "u1", Role: domain.RoleCandidate}, nil)

		w := get(newEngine(AuthMiddleware(stubVerifier{claims: claimsFor("u1", false)}, uc)),
			http.Header{"Cookie": []string{"auth_token=t"}})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		uc := new(mockAuthUsecase)
		uc.On("GetCurrentUser", mock.Anything, "gone").Return(nil, apperror.Unauthorized("User not found"))

		w := get(newEngine(AuthMiddleware(stubVerifier{claims: claimsFor("gone", false)}, uc)), bearer("t"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func withPrincipal(p *domain.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), *p))
		}
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong role", &domain.Principal{UserID: "u1", Role: domain.RoleRecruiter}, http.StatusForbidden},
		{"allowed", &domain.Principal{UserID: "u1", Role: domain.RoleCandidate}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(withPrincipal(tt.principal), RequireRole(domain.RoleCandidate))
			assert.Equal(t, tt.want, get(r, nil).Code)
		})
	}
}

func TestRateLimiterInMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, nil, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := newEngine(rl.Middleware(DefaultRateLimitConfig(2, time.Minute)))

	for i := 0; i < 2; i++ {
		w := get(r, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.KindRateLimited, body.Error)

	// window rolls over
	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, nil, nil)
	cfg := DefaultRateLimitConfig(1, time.Minute)
	cfg.KeyFunc = func(c *gin.Context) string { return c.GetHeader("X-Client") }
	r := newEngine(rl.Middleware(cfg))

	a := http.Header{"X-Client": []string{"a"}}
	b := http.Header{"X-Client": []string{"b"}}
	assert.Equal(t, http.StatusOK, get(r, a).Code)
	assert.Equal(t, http.StatusOK, get(r, b).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, a).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"https://app.example"}, true))

	w := get(r, http.Header{"Origin": []string{"https://app.example"}})
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, http.Header{"Origin": []string{"http://localhost:3000"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	dev := newEngine(CORSMiddleware(nil, false))
	w = get(dev, http.Header{"Origin": []string{"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestErrorHandlerHidesInternalCauses(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(nil))
	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("pq: password authentication failed"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeadersMiddleware())
	w := get(r, bearer("t"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(nil), CSRFMiddleware(nil, false))
	r.POST("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(method string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/ping", nil)
		for k, v := range header {
			req.Header[k] = v
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	cookies := "auth_token=t; csrf_token=abc"

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, nil).Code, "no session cookie")
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, http.Header{
		"Cookie":        []string{cookies},
		"Authorization": []string{"Bearer t"},
	}).Code, "bearer clients are exempt")
	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, http.Header{"Cookie": []string{cookies}}).Code)

	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, http.Header{"Cookie": []string{cookies}}).Code)
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, http.Header{
		"Cookie":       []string{cookies},
		"X-Csrf-Token": []string{"abd"},
	}).Code)
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, http.Header{
		"Cookie":       []string{cookies},
		"X-Csrf-Token": []string{"abc"},
	}).Code)

	// a session without a csrf cookie gets one issued
	w := send(http.MethodGet, http.Header{"Cookie": []string{"auth_token=t"}})
	assert.Contains(t, w.Header().Get("Set-Cookie"), CSRFTokenCookieName+"=")
}
