package undo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPerformRunsMostRecent(t *testing.T) {
	l := NewLedger(zap.NewNop())
	defer l.Stop()

	var ran []string
	l.Push("add_1", "Added order 1", func(context.Context) error { ran = append(ran, "1"); return nil })
	l.Push("add_2", "Added order 2", func(context.Context) error { ran = append(ran, "2"); return nil })

	action, err := l.Perform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "add_2", action.ID)
	assert.Equal(t, []string{"2"}, ran)
	assert.Equal(t, 1, l.Len())

	_, visible := l.Last()
	assert.False(t, visible)
}

func TestPerformEmpty(t *testing.T) {
	l := NewLedger(nil)
	_, err := l.Perform(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestCapacityEvictsOldest(t *testing.T) {
	l := NewLedger(zap.NewNop())
	defer l.Stop()

	for i := 1; i <= 11; i++ {
		l.Push(fmt.Sprintf("add_%d", i), "", func(context.Context) error { return nil })
	}

	require.Equal(t, 10, l.Len())
	actions := l.Actions()
	assert.Equal(t, "add_11", actions[0].ID)
	assert.Equal(t, "add_2", actions[9].ID)

	for i := 0; i < 10; i++ {
		_, err := l.Perform(context.Background())
		require.NoError(t, err)
	}
	_, err := l.Perform(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo, "the first action must no longer be undoable")
}

func TestWithCapacity(t *testing.T) {
	l := NewLedger(zap.NewNop(), WithCapacity(3), WithCapacity(0))
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Push(fmt.Sprintf("add_%d", i), "", func(context.Context) error { return nil })
	}
	require.Equal(t, 3, l.Len())
	assert.Equal(t, "add_2", l.Actions()[2].ID)
}

func TestFailedUndoLeavesStack(t *testing.T) {
	l := NewLedger(zap.NewNop())
	defer l.Stop()

	boom := errors.New("store offline")
	l.Push("delete_7", "Deleted order 7", func(context.Context) error { return boom })

	_, err := l.Perform(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, l.Len())

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "delete_7", last.ID)
}

func TestPanickingUndoIsContained(t *testing.T) {
	l := NewLedger(zap.NewNop())
	defer l.Stop()

	l.Push("x", "", func(context.Context) error { panic("bad closure") })
	_, err := l.Perform(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, l.Len())
}

func TestClearDoesNotRunActions(t *testing.T) {
	l := NewLedger(zap.NewNop())
	called := false
	l.Push("x", "", func(context.Context) error { called = true; return nil })

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.False(t, called)
	_, ok := l.Last()
	assert.False(t, ok)
}

func TestLastActionDismissed(t *testing.T) {
	l := NewLedger(zap.NewNop(), WithDismissAfter(30*time.Millisecond))
	defer l.Stop()

	l.Push("a", "first", func(context.Context) error { return nil })
	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "a", last.ID)

	assert.Eventually(t, func() bool {
		_, ok := l.Last()
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Dismissal hides the notification but keeps the action undoable.
	assert.Equal(t, 1, l.Len())
}

func TestNewPushReplacesVisibleAction(t *testing.T) {
	l := NewLedger(zap.NewNop(), WithDismissAfter(time.Hour))
	defer l.Stop()

	l.Push("a", "", func(context.Context) error { return nil })
	l.Push("b", "", func(context.Context) error { return nil })

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.ID)
}
