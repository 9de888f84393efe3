package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rows [][]interface{}

func (r rows) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	return r, nil
}

func TestSheetSource(t *testing.T) {
	src := NewSheetSource(rows{
		{"t1", "Turkey", "kg", "Free range"},
		{"", "Goose"},
		{"x", ""},
		{},
	})
	require.True(t, src.Connected())

	got, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Turkey", got[0].Name)
	assert.Equal(t, "row-3", got[1].ID)
	assert.Empty(t, got[1].Unit)

	assert.False(t, NewSheetSource(nil).Connected())
}
