package errlog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/butchershop/internal/repository/store"
)

func TestRecordCapsAndOrders(t *testing.T) {
	ctx := context.Background()
	log := New(store.NewMemory(), nil)

	for i := 0; i < MaxEntries+5; i++ {
		log.Record(ctx, "orders", fmt.Errorf("failure %d", i))
	}
	log.Record(ctx, "orders", nil)

	entries, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, fmt.Sprintf("failure %d", MaxEntries+4), entries[0].Message)
	assert.Equal(t, "failure 5", entries[MaxEntries-1].Message)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	log := New(store.NewMemory(), nil)
	log.Record(ctx, "sync", errors.New("sheet unreachable"))

	require.NoError(t, log.Clear(ctx))
	entries, err := log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
