package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finsave/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := InitServer(context.Background(), config.RedisConnection{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t)

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, c.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := c.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)

	mr.FastForward(time.Minute)
	found, err = c.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetInvalidJSON(t *testing.T) {
	ctx := context.Background()
	c, _ := setupTestCache(t)

	require.NoError(t, c.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out testStruct
	found, err := c.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestCache_RevokeToken(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t)

	revoked, err := c.TokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = c.TokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = c.TokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "mark expires with the token")

	require.NoError(t, c.RevokeToken(ctx, "jti-2", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked:token:jti-2"), "already expired tokens are not stored")
}

func TestCache_RevokeUser(t *testing.T) {
	ctx := context.Background()
	c, _ := setupTestCache(t)

	_, found, err := c.UserRevokedAt(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)

	at := time.Unix(1_700_000_000, 0)
	require.NoError(t, c.RevokeUser(ctx, 5, at, time.Hour))

	got, found, err := c.UserRevokedAt(ctx, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, at.Equal(got))
}

func TestInitServer_InvalidAddr(t *testing.T) {
	c, err := InitServer(context.Background(), config.RedisConnection{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	})
	assert.Nil(t, c)
	assert.Error(t, err)
}
