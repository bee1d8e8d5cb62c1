package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

func TestLoginSurvivesFreshStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	backend, err := storage.NewRedisBackend(rdb, "", 0)
	require.NoError(t, err)
	ctx := context.Background()

	s, err := backend.Session("sess-1")
	require.NoError(t, err)
	require.NoError(t, NewStore(s).Login(ctx, "cpf-123"))

	fresh := NewStore(s)
	assert.False(t, fresh.IsLogged())
	require.NoError(t, fresh.CheckLoginStatus(ctx))
	assert.True(t, fresh.IsLogged())
	assert.Equal(t, "cpf-123", fresh.UserID())
}

func TestLogoutClearsEverything(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	ctx := context.Background()

	store := NewStore(s)
	require.NoError(t, store.Login(ctx, "cpf-123"))
	require.NoError(t, store.SaveUserData(ctx, UserData{User: domain.UserProfile{CPF: "cpf-123"}}))
	require.NoError(t, store.Logout(ctx))

	assert.False(t, store.IsLogged())
	assert.Empty(t, store.UserID())
	for _, key := range []string{KeyLogged, KeyUserID, KeyUserData} {
		_, ok, err := s.GetItem(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	fresh := NewStore(s)
	require.NoError(t, fresh.CheckLoginStatus(ctx))
	assert.False(t, fresh.IsLogged())
}

func TestLoggedFlagMustBeTrue(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.SetItem(ctx, KeyLogged, "yes"))
	require.NoError(t, s.SetItem(ctx, KeyUserID, "cpf-123"))

	store := NewStore(s)
	require.NoError(t, store.CheckLoginStatus(ctx))
	assert.False(t, store.IsLogged())
	assert.Empty(t, store.UserID())

	id, err := store.ResolveUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestUserDataKeepsRawLicense(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	ctx := context.Background()
	store := NewStore(s)

	raw := "TElDRU5TQQ=="
	url := "data:image/jpeg;base64," + raw
	require.NoError(t, store.SaveUserData(ctx, UserData{
		Tents: []domain.TentSummary{{Code: 3, Name: "Barraca da Ana", LicenseURL: &url, License: &raw}},
	}))

	data, err := store.UserData(ctx)
	require.NoError(t, err)
	tent := data.Tent(3)
	require.NotNil(t, tent)
	assert.Equal(t, url, *tent.LicenseURL)
	require.NotNil(t, tent.License)
	assert.Equal(t, raw, *tent.License)

	public, err := json.Marshal(tent)
	require.NoError(t, err)
	assert.NotContains(t, string(public), `"`+raw+`"`)
}

func TestResolveUserIDPrefersProfileCPF(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	ctx := context.Background()
	store := NewStore(s)

	id, err := store.ResolveUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.Login(ctx, "user-9"))
	id, err = store.ResolveUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-9", id)

	require.NoError(t, store.SaveUserData(ctx, UserData{
		User:  domain.UserProfile{CPF: "111.222.333-44", Name: "Ana"},
		Tents: []domain.TentSummary{{Code: 3, Name: "Barraca da Ana"}},
	}))
	id, err = store.ResolveUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "111.222.333-44", id)

	data, err := store.UserData(ctx)
	require.NoError(t, err)
	require.NotNil(t, data.Tent(3))
	assert.Equal(t, "Barraca da Ana", data.Tent(3).Name)
	assert.Nil(t, data.Tent(4))
}
