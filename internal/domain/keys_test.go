package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u1", Role: RoleRecruiter})
	p, ok := PrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, RoleRecruiter, p.Role)

	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok)
}
