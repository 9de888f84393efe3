package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

const (
	// FormatVersion is stamped on every snapshot and export.
	FormatVersion = "1.0"
	// DefaultRetention is the number of snapshots kept.
	DefaultRetention = 30
)

var (
	ErrNotFound      = errors.New("backup not found")
	ErrInvalidType   = errors.New("backup type must be manual or automatic")
	ErrInvalidBackup = errors.New("invalid backup file")
)

type entry struct {
	ID       string            `json:"id"`
	Type     models.BackupType `json:"type"`
	Snapshot models.Snapshot   `json:"snapshot"`
}

func (e entry) info() models.BackupInfo {
	return models.BackupInfo{
		ID:            e.ID,
		Type:          e.Type,
		Timestamp:     e.Snapshot.Timestamp,
		CustomerCount: len(e.Snapshot.Customers),
		OrderCount:    len(e.Snapshot.Orders),
	}
}

// Service stores snapshots of customers and orders. It never writes restored data back;
// applying a snapshot is the caller's job.
type Service struct {
	mu        sync.Mutex
	kv        store.KV
	retention int
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(kv store.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		kv:        kv,
		retention: DefaultRetention,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateBackup stores a snapshot and evicts the oldest beyond the retention limit.
func (s *Service) CreateBackup(ctx context.Context, customers []models.Customer, orders []models.Order, typ models.BackupType) (models.BackupInfo, error) {
	if typ != models.BackupManual && typ != models.BackupAutomatic {
		return models.BackupInfo{}, ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		return models.BackupInfo{}, err
	}

	now := s.now()
	e := entry{
		ID:   uniqueID(entries, typ, now),
		Type: typ,
		Snapshot: models.Snapshot{
			Customers: nonNilCustomers(customers),
			Orders:    nonNilOrders(orders),
			Timestamp: now,
			Version:   FormatVersion,
		},
	}
	// Retention is applied to the existing entries so the new snapshot is never the one
	// evicted, even when its timestamp ties with or predates the oldest kept one.
	sortNewestFirst(entries)
	if keep := s.retention - 1; len(entries) > keep {
		for _, evicted := range entries[keep:] {
			s.logger.Info("evicting old backup", zap.String("id", evicted.ID))
		}
		entries = entries[:keep]
	}
	entries = append([]entry{e}, entries...)

	if err := store.SaveJSON(ctx, s.kv, store.KeyBackups, entries); err != nil {
		s.logger.Error("failed to persist backup", zap.String("id", e.ID), zap.Error(err))
		return models.BackupInfo{}, fmt.Errorf("create backup: %w", err)
	}

	s.logger.Info("backup created",
		zap.String("id", e.ID),
		zap.String("type", string(typ)),
		zap.Int("customers", len(e.Snapshot.Customers)),
		zap.Int("orders", len(e.Snapshot.Orders)),
	)
	return e.info(), nil
}

// ListBackups returns metadata for every stored snapshot, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]models.BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)

	out := make([]models.BackupInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.info())
	}
	return out, nil
}

// RestoreFromBackup returns the stored collections verbatim.
func (s *Service) RestoreFromBackup(ctx context.Context, id string) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e.Snapshot, nil
		}
	}
	return models.Snapshot{}, ErrNotFound
}

func (s *Service) DeleteBackup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		entries = append(entries[:i:i], entries[i+1:]...)
		if err := store.SaveJSON(ctx, s.kv, store.KeyBackups, entries); err != nil {
			return fmt.Errorf("delete backup: %w", err)
		}
		return nil
	}
	return ErrNotFound
}

// ExportToFile writes a standalone backup document.
func (s *Service) ExportToFile(w io.Writer, customers []models.Customer, orders []models.Order) error {
	doc := models.Snapshot{
		Customers: nonNilCustomers(customers),
		Orders:    nonNilOrders(orders),
		Timestamp: s.now(),
		Version:   FormatVersion,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export backup: %w", err)
	}
	return nil
}

// ExportFilename names an export after its date.
func ExportFilename(now time.Time) string {
	return "butcher-shop-backup-" + now.Format(models.DateLayout) + ".json"
}

// ImportFromFile parses a backup document. Documents missing customers, orders
// or timestamp are rejected whole.
func ImportFromFile(r io.Reader) (models.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read backup file: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: not a JSON object", ErrInvalidBackup)
	}
	for _, key := range []string{"customers", "orders", "timestamp"} {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			return models.Snapshot{}, fmt.Errorf("%w: missing %q", ErrInvalidBackup, key)
		}
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if snap.Version == "" {
		snap.Version = FormatVersion
	}
	return snap, nil
}

func (s *Service) loadLocked(ctx context.Context) ([]entry, error) {
	var entries []entry
	if _, err := store.LoadJSON(ctx, s.kv, store.KeyBackups, &entries); err != nil {
		return nil, fmt.Errorf("load backups: %w", err)
	}
	return entries, nil
}

func uniqueID(entries []entry, typ models.BackupType, now time.Time) string {
	taken := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		taken[e.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := string(typ) + "_" + strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func sortNewestFirst(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Snapshot.Timestamp.After(entries[j].Snapshot.Timestamp)
	})
}

func nonNilCustomers(in []models.Customer) []models.Customer {
	if in == nil {
		return []models.Customer{}
	}
	return in
}

func nonNilOrders(in []models.Order) []models.Order {
	if in == nil {
		return []models.Order{}
	}
	return in
}
