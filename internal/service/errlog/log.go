package errlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

// MaxEntries is the number of newest entries kept.
const MaxEntries = 100

// Log is a durable, capped record of operational failures.
type Log struct {
	mu     sync.Mutex
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time
}

func New(kv store.KV, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{kv: kv, logger: logger, now: time.Now}
}

// WithClock replaces the time source.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// Record stores err under source. Failures to persist are only logged.
func (l *Log) Record(ctx context.Context, source string, err error) {
	if err == nil {
		return
	}
	l.logger.Error("operation failed", zap.String("source", source), zap.Error(err))

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, loadErr := l.loadLocked(ctx)
	if loadErr != nil {
		l.logger.Warn("resetting unreadable error log", zap.Error(loadErr))
		entries = nil
	}
	entries = append([]models.ErrorLogEntry{{
		Timestamp: l.now(),
		Source:    source,
		Message:   err.Error(),
	}}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	if saveErr := store.SaveJSON(ctx, l.kv, store.KeyErrorLogs, entries); saveErr != nil {
		l.logger.Warn("failed to persist error log", zap.Error(saveErr))
	}
}

// List returns entries newest first.
func (l *Log) List(ctx context.Context) ([]models.ErrorLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ErrorLogEntry{}
	}
	return entries, nil
}

func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Delete(ctx, store.KeyErrorLogs); err != nil {
		return fmt.Errorf("clear error log: %w", err)
	}
	return nil
}

func (l *Log) loadLocked(ctx context.Context) ([]models.ErrorLogEntry, error) {
	var entries []models.ErrorLogEntry
	if _, err := store.LoadJSON(ctx, l.kv, store.KeyErrorLogs, &entries); err != nil {
		return nil, fmt.Errorf("load error log: %w", err)
	}
	return entries, nil
}
