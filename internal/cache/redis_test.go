package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithoutAddrDisablesCache(t *testing.T) {
	client, err := Connect(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestDisabledStorePassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(nil, time.Minute)
	assert.False(t, store.Enabled())

	resp, pending, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.False(t, pending)

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, store.Save(ctx, "k", &Response{Status: 201}))
	assert.NoError(t, store.Release(ctx, "k"))
	assert.NoError(t, store.Ping(ctx))

	var nilStore *IdempotencyStore
	assert.False(t, nilStore.Enabled())
}
