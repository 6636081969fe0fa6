package domain

import "context"

type CtxKey string

// Keys set on the gin context by the auth middleware, read by logging.
const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyRequestID CtxKey = "RequestID"
)

type principalKey struct{}

// Principal is the authenticated caller resolved by the identity layer.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller, or false when the request is anonymous.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
