package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "dr-jones", Roles: []string{"staff"}})

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "dr-jones", got.UserID)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestFromContextOrSystem(t *testing.T) {
	got := FromContextOrSystem(context.Background())
	assert.Equal(t, SystemUserID, got.UserID)
	assert.True(t, got.IsSystem())

	ctx := WithIdentity(context.Background(), Identity{UserID: "dr-jones"})
	got = FromContextOrSystem(ctx)
	assert.Equal(t, "dr-jones", got.UserID)
	assert.False(t, got.IsSystem())
}

func TestHasRole(t *testing.T) {
	ident := Identity{UserID: "dr-jones", Roles: []string{"staff", "clinician"}}
	assert.True(t, ident.HasRole("clinician"))
	assert.False(t, ident.HasRole("admin"))
	assert.False(t, Identity{}.HasRole("staff"))
}
