package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func backends(t *testing.T) map[string]Backend {
	_, client := setupTestRedis(t)
	redisBackend, err := NewRedisBackend(client, "test:session", time.Hour)
	require.NoError(t, err)

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"redis":  redisBackend,
	}
}

func TestBackendRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, err := backend.Session("abc")
			require.NoError(t, err)

			_, ok, err := s.GetItem(ctx, "logged")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.SetItem(ctx, "logged", "true"))
			value, ok, err := s.GetItem(ctx, "logged")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "true", value)

			require.NoError(t, s.RemoveItem(ctx, "logged"))
			_, ok, err = s.GetItem(ctx, "logged")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := backend.Session("first")
			require.NoError(t, err)
			second, err := backend.Session("second")
			require.NoError(t, err)

			require.NoError(t, first.SetItem(ctx, "userId", "111"))

			_, ok, err := second.GetItem(ctx, "userId")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestEmptySessionRejected(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := backend.Session("")
			assert.ErrorIs(t, err, ErrEmptySession)
		})
	}
}

func TestRedisBackendRefreshesTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	backend, err := NewRedisBackend(client, "", 10*time.Minute)
	require.NoError(t, err)

	s, err := backend.Session("ttl")
	require.NoError(t, err)
	require.NoError(t, s.SetItem(context.Background(), "cart", "{}"))

	assert.Equal(t, 10*time.Minute, mr.TTL("storefront:session:ttl"))

	mr.FastForward(11 * time.Minute)
	_, ok, err := s.GetItem(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryBackend().Session("json")
	require.NoError(t, err)

	type payload struct {
		Name string `json:"name"`
	}

	var out payload
	ok, err := GetJSON(ctx, s, "blob", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "blob", payload{Name: "Barraca da Ana"}))
	ok, err = GetJSON(ctx, s, "blob", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Barraca da Ana", out.Name)

	require.NoError(t, s.SetItem(ctx, "broken", "{not json"))
	_, err = GetJSON(ctx, s, "broken", &out)
	assert.Error(t, err)
}

func TestLockerSerializesSession(t *testing.T) {
	locker := NewLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("same")
			defer unlock()
			current := counter
			time.Sleep(time.Microsecond)
			counter = current + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locker.locks)
}
