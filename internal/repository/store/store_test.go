package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string `json:"name"`
}

func TestSaveAndLoadJSON(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	require.NoError(t, SaveJSON(ctx, kv, KeyCustomers, []record{{Name: "a"}, {Name: "b"}}))

	var got []record
	ok, err := LoadJSON(ctx, kv, KeyCustomers, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []record{{Name: "a"}, {Name: "b"}}, got)
}

func TestLoadJSONMissingKey(t *testing.T) {
	var got []record
	ok, err := LoadJSON(context.Background(), NewMemory(), KeyOrders, &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoadJSONCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyOrders, "{not json"))

	var got []record
	ok, err := LoadJSON(ctx, kv, KeyOrders, &got)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
