package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/habit-tracker/internal/testutil"
)

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := store.UserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	other, err := store.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must be unique")

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.UserID(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.UserID(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	token, err := store.Create(context.Background(), 1)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.UserID(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore(t *testing.T) {
	client, cleanup := testutil.SetupTestRedis(t)
	defer cleanup()

	store := NewRedisStore(client, time.Hour)
	exerciseStore(t, store)

	token, err := store.Create(context.Background(), 7)
	require.NoError(t, err)
	ttl, err := client.TTL(context.Background(), key(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestCookieRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, "abc", time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	token, ok := Token(r)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = Token(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer xyz")

	token, ok := Token(r)
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	r.Header.Set("Authorization", "Basic xyz")
	_, ok = Token(r)
	assert.False(t, ok)
}
