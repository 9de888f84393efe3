// Package storetest provides KV doubles for exercising persistence failures.
package storetest

import (
	"context"
	"errors"
	"sync"

	"github.com/mamadbah2/butchershop/internal/repository/store"
)

// ErrWriteFailed is returned by Flaky once writes are switched off.
var ErrWriteFailed = errors.New("store write failed")

// Flaky wraps a memory store and can be told to fail writes.
type Flaky struct {
	*store.Memory

	mu         sync.Mutex
	failWrites bool
}

// NewFlaky returns a Flaky backed by a fresh memory store.
func NewFlaky() *Flaky {
	return &Flaky{Memory: store.NewMemory()}
}

// FailWrites toggles write failures.
func (f *Flaky) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *Flaky) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return ErrWriteFailed
	}
	return f.Memory.Set(ctx, key, value)
}
