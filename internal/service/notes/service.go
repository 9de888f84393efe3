package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

var (
	ErrNotFound     = errors.New("note not found")
	ErrEmptyContent = errors.New("note content is required")
	ErrNoOrder      = errors.New("note must reference an order")
)

// Service keeps staff notes. Notes are immutable once written and survive deletion of their order.
type Service struct {
	mu     sync.RWMutex
	kv     store.KV
	notes  []models.StaffNote
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(kv store.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Load(ctx context.Context) error {
	var loaded []models.StaffNote
	if _, err := store.LoadJSON(ctx, s.kv, store.KeyStaffNotes, &loaded); err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	s.mu.Lock()
	s.notes = loaded
	s.mu.Unlock()
	return nil
}

// AddNote appends a note to an order. Staff name defaults to "Staff".
func (s *Service) AddNote(ctx context.Context, orderID, staffName, content string) (models.StaffNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.StaffNote{}, ErrEmptyContent
	}
	if strings.TrimSpace(orderID) == "" {
		return models.StaffNote{}, ErrNoOrder
	}
	staffName = strings.TrimSpace(staffName)
	if staffName == "" {
		staffName = "Staff"
	}

	note := models.StaffNote{
		ID:        s.newID(),
		OrderID:   orderID,
		StaffName: staffName,
		Timestamp: s.now(),
		Content:   content,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
	if err := store.SaveJSON(ctx, s.kv, store.KeyStaffNotes, s.notes); err != nil {
		s.logger.Error("failed to persist note", zap.String("order_id", orderID), zap.Error(err))
		return models.StaffNote{}, fmt.Errorf("add note: %w", err)
	}
	return note, nil
}

// GetNotesForOrder returns the order's notes, newest first.
func (s *Service) GetNotesForOrder(orderID string) []models.StaffNote {
	s.mu.RLock()
	out := make([]models.StaffNote, 0)
	for _, n := range s.notes {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()
	newestFirst(out)
	return out
}

// ListNotes returns every note, newest first, orphans included.
func (s *Service) ListNotes() []models.StaffNote {
	s.mu.RLock()
	out := append([]models.StaffNote{}, s.notes...)
	s.mu.RUnlock()
	newestFirst(out)
	return out
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID != id {
			continue
		}
		s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
		if err := store.SaveJSON(ctx, s.kv, store.KeyStaffNotes, s.notes); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		return nil
	}
	return ErrNotFound
}

func newestFirst(notes []models.StaffNote) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp.After(notes[j].Timestamp)
	})
}
