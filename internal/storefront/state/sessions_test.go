package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	factory, err := history.NewFactory(history.KindLocal, nil, nil)
	require.NoError(t, err)
	return NewSessions(storage.NewMemoryBackend(), storage.NewLocker(), factory)
}

func TestRotateMovesCartAndHistory(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	from, err := sessions.Open(ctx, "old")
	require.NoError(t, err)
	defer from.Close()

	_, err = from.Cart.Add(ctx, cart.Item{Code: 8, Name: "Cocada", Price: 3, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, from.History.Record(ctx, domain.Sale{ID: 1, UserCode: "123"}))
	require.NoError(t, from.Auth.Login(ctx, "123"))

	to, err := sessions.Rotate(ctx, from, "new")
	require.NoError(t, err)
	defer to.Close()

	assert.Equal(t, "new", to.ID)
	assert.False(t, to.Auth.IsLogged())
	count, err := to.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	sales, err := to.History.ListByUser(ctx, "123")
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	assert.False(t, from.Auth.IsLogged())
	count, err = from.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	sales, err = from.History.ListByUser(ctx, "123")
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRotateNeedsNewID(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	from, err := sessions.Open(ctx, "old")
	require.NoError(t, err)
	defer from.Close()

	_, err = sessions.Rotate(ctx, from, "old")
	assert.Error(t, err)
	_, err = sessions.Rotate(ctx, from, "")
	assert.Error(t, err)
}
