package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw/internal/model"
)

func TestEnsureUser(t *testing.T) {
	users := newFakeUsers(model.User{TelegramID: 42, Username: "alice"})
	svc := NewAccountService(users)
	ctx := context.Background()

	u, created, err := svc.EnsureUser(ctx, 7, "carol")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "carol", u.Username)

	u, created, err = svc.EnsureUser(ctx, 42, "alice_new")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "alice_new", u.Username)
	assert.Equal(t, "alice_new", users.users[42].Username)

	u, _, err = svc.EnsureUser(ctx, 42, "")
	require.NoError(t, err)
	assert.Equal(t, "alice_new", u.Username)
}

func TestSetMobilephone(t *testing.T) {
	users := newFakeUsers(model.User{TelegramID: 42, Username: "alice"})
	svc := NewAccountService(users)
	ctx := context.Background()

	require.NoError(t, svc.SetMobilephone(ctx, 42, "13800138000"))
	assert.Equal(t, "13800138000", users.users[42].Mobilephone)

	err := svc.SetMobilephone(ctx, 42, "800")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "mobilephone", ve.Field)

	assert.ErrorIs(t, svc.SetMobilephone(ctx, 404, "13800138000"), ErrNotFound)
}
