package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCapacity     = 10
	defaultDismissAfter = 5 * time.Second
)

// ErrNothingToUndo is returned when the stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// Func restores a full prior snapshot of the affected collection.
type Func func(ctx context.Context) error

// Action is one reversible operation. IDs are not deduplicated.
type Action struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Undo        Func      `json:"-"`
}

// Option customises a Ledger.
type Option func(*Ledger)

// WithCapacity overrides the number of retained actions.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithDismissAfter overrides how long the last action stays visible.
func WithDismissAfter(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.dismissAfter = d
		}
	}
}

// Ledger is a bounded stack of reversible actions with a single visible "last action".
type Ledger struct {
	mu           sync.Mutex
	runMu        sync.Mutex
	stack        []*Action
	last         *Action
	timer        *time.Timer
	capacity     int
	dismissAfter time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewLedger builds an empty ledger.
func NewLedger(logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		capacity:     defaultCapacity,
		dismissAfter: defaultDismissAfter,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Push records an action at the top of the stack, evicting the oldest beyond capacity,
// and makes it the visible last action. A new push restarts the dismiss timer.
func (l *Ledger) Push(id, description string, fn Func) {
	action := &Action{ID: id, Description: description, Timestamp: l.now(), Undo: fn}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.stack = append([]*Action{action}, l.stack...)
	if len(l.stack) > l.capacity {
		evicted := l.stack[l.capacity:]
		for i := range evicted {
			evicted[i] = nil
		}
		l.stack = l.stack[:l.capacity]
	}

	l.last = action
	l.resetTimerLocked(action)
	l.logger.Debug("undo action recorded", zap.String("id", id), zap.Int("depth", len(l.stack)))
}

// Perform runs the most recent action. On success the action is removed and the
// visible last action cleared; on failure the stack is left as it was.
func (l *Ledger) Perform(ctx context.Context) (Action, error) {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	l.mu.Lock()
	if len(l.stack) == 0 {
		l.mu.Unlock()
		return Action{}, ErrNothingToUndo
	}
	top := l.stack[0]
	l.mu.Unlock()

	if err := l.run(ctx, top); err != nil {
		l.logger.Error("undo failed", zap.String("id", top.ID), zap.Error(err))
		return *top, fmt.Errorf("undo %s: %w", top.ID, err)
	}

	l.mu.Lock()
	for i, candidate := range l.stack {
		if candidate == top {
			l.stack = append(l.stack[:i], l.stack[i+1:]...)
			break
		}
	}
	l.clearLastLocked()
	l.mu.Unlock()

	l.logger.Info("undo performed", zap.String("id", top.ID), zap.String("description", top.Description))
	return *top, nil
}

func (l *Ledger) run(ctx context.Context, action *Action) (err error) {
	if action.Undo == nil {
		return errors.New("action has no undo function")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("undo panicked: %v", r)
		}
	}()
	return action.Undo(ctx)
}

// Clear empties the stack without running any action.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stack = nil
	l.clearLastLocked()
}

// Last returns the visible last action, if any.
func (l *Ledger) Last() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return Action{}, false
	}
	return *l.last, true
}

// Actions lists retained actions, most recent first.
func (l *Ledger) Actions() []Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Action, 0, len(l.stack))
	for _, action := range l.stack {
		out = append(out, *action)
	}
	return out
}

// Len reports the stack depth.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.stack)
}

// Stop cancels the pending dismiss timer.
func (l *Ledger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Ledger) resetTimerLocked(action *Action) {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.dismissAfter, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// A stale timer must not hide a newer action.
		if l.last == action {
			l.last = nil
		}
	})
}

func (l *Ledger) clearLastLocked() {
	l.last = nil
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
