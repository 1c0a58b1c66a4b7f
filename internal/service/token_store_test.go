package service

import (
	"context"
	"testing"
	"time"

	"massage-booking/internal/testutil"
	"massage-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	store := NewTokenStore(client)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, jwt.RefreshToken, userID, "abc", time.Hour))
	assert.True(t, mr.Exists("refresh_token:"+userID.String()+":abc"))

	valid, err := store.IsValid(ctx, jwt.RefreshToken, userID, "abc")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = store.IsValid(ctx, jwt.AccessToken, userID, "abc")
	require.NoError(t, err)
	assert.False(t, valid, "token types must not share keys")

	require.NoError(t, store.Revoke(ctx, jwt.RefreshToken, userID, "abc"))
	require.NoError(t, store.Revoke(ctx, jwt.RefreshToken, userID, "abc"))

	valid, err = store.IsValid(ctx, jwt.RefreshToken, userID, "abc")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenStore_Expiry(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	store := NewTokenStore(client)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, jwt.AccessToken, userID, "short", time.Minute))
	mr.FastForward(2 * time.Minute)

	valid, err := store.IsValid(ctx, jwt.AccessToken, userID, "short")
	require.NoError(t, err)
	assert.False(t, valid)
}
