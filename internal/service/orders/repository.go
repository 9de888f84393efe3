package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
	"github.com/mamadbah2/butchershop/internal/service/undo"
)

// maxSeriesLength bounds a single recurring submission (five years of weekly orders).
const maxSeriesLength = 260

var (
	// ErrNotFound indicates no order carries the requested id.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidRecurrence indicates a recurring request without a usable pattern or end date.
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	// ErrEmptySeries indicates a recurring request whose end date precedes its first collection.
	ErrEmptySeries = errors.New("recurring series produced no orders")
	// ErrSeriesTooLong indicates a recurring request beyond maxSeriesLength occurrences.
	ErrSeriesTooLong = errors.New("recurring series too long")
)

// UndoRecorder receives reversible operations.
type UndoRecorder interface {
	Push(id, description string, fn undo.Func)
}

// CustomerLookup resolves display names for search.
type CustomerLookup interface {
	CustomerName(id string) string
}

// Repository owns the order collection.
type Repository struct {
	mu        sync.RWMutex
	kv        store.KV
	undo      UndoRecorder
	customers CustomerLookup
	orders    []models.Order
	highWater int64
	lastErr   string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewRepository wires an order repository. customers may be nil.
func NewRepository(kv store.KV, recorder UndoRecorder, customers CustomerLookup, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		kv:        kv,
		undo:      recorder,
		customers: customers,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock replaces the time source; the returned repository is the receiver.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Load reads the collection and the id high-water mark from the store.
func (r *Repository) Load(ctx context.Context) error {
	var loaded []models.Order
	if _, err := store.LoadJSON(ctx, r.kv, store.KeyOrders, &loaded); err != nil {
		return r.fail("load orders", err)
	}
	var seq int64
	if _, err := store.LoadJSON(ctx, r.kv, store.KeyOrderSequence, &seq); err != nil {
		r.logger.Warn("order sequence unreadable, deriving from collection", zap.Error(err))
		seq = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = loaded
	r.highWater = max(seq, maxNumericID(loaded))
	r.lastErr = ""
	r.logger.Info("orders loaded", zap.Int("count", len(loaded)))
	return nil
}

// AddOrder creates one order, or a whole recurring series when in.IsRecurring is set,
// and returns the first created order. A series is committed as one change with one undo entry.
func (r *Repository) AddOrder(ctx context.Context, in models.NewOrder) (models.Order, error) {
	r.mu.Lock()

	before := cloneOrders(r.orders)
	created, err := r.buildLocked(in)
	if err != nil {
		r.mu.Unlock()
		return models.Order{}, r.fail("add order", err)
	}

	// The collection is newest first, so the series goes in highest id first.
	merged := make([]models.Order, 0, len(created)+len(r.orders))
	for i := len(created) - 1; i >= 0; i-- {
		merged = append(merged, created[i])
	}
	r.orders = append(merged, r.orders...)
	for _, o := range created {
		if id, ok := numericID(o.ID); ok && id > r.highWater {
			r.highWater = id
		}
	}
	persistErr := r.persistLocked(ctx)
	r.mu.Unlock()

	first := created[0]
	actionID := "add_order_" + first.ID
	description := fmt.Sprintf("Added order #%s", first.ID)
	if len(created) > 1 {
		description = fmt.Sprintf("Added %d recurring orders (#%s-#%s)", len(created), first.ID, created[len(created)-1].ID)
	}
	r.record(actionID, description, before)

	if persistErr != nil {
		return models.Order{}, r.fail("add order", persistErr)
	}

	r.logger.Info("order created", zap.String("id", first.ID), zap.Int("count", len(created)))
	return cloneOrder(first), nil
}

func (r *Repository) buildLocked(in models.NewOrder) ([]models.Order, error) {
	now := r.now()
	items := make([]models.OrderItem, len(in.Items))
	for i, item := range in.Items {
		if item.ID == "" {
			item.ID = r.newID()
		}
		items[i] = item
	}

	base := models.Order{
		CustomerID:      in.CustomerID,
		Items:           items,
		CollectionDate:  in.CollectionDate,
		CollectionTime:  in.CollectionTime,
		Status:          in.Status,
		AdditionalNotes: in.AdditionalNotes,
		OrderType:       in.OrderType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if base.Status == "" {
		base.Status = models.StatusPending
	}
	if base.OrderType == "" {
		base.OrderType = models.OrderTypeStandard
	}

	if !in.IsRecurring {
		base.ID = r.nextIDLocked(nil)
		return []models.Order{base}, nil
	}

	if in.RecurrencePattern == nil || in.RecurrencePattern.IntervalDays() == 0 {
		return nil, ErrInvalidRecurrence
	}
	start, err := time.Parse(models.DateLayout, in.CollectionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: collection date: %v", ErrInvalidRecurrence, err)
	}
	end, err := time.Parse(models.DateLayout, in.RecurrenceEndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date: %v", ErrInvalidRecurrence, err)
	}

	pattern := *in.RecurrencePattern
	parentID := r.newID()
	var series []models.Order
	for current := start; !current.After(end); current = current.AddDate(0, 0, pattern.IntervalDays()) {
		if len(series) == maxSeriesLength {
			return nil, ErrSeriesTooLong
		}
		member := cloneOrder(base)
		// The running maximum includes uncommitted members so ids stay unique within the series.
		member.ID = r.nextIDLocked(series)
		member.CollectionDate = current.Format(models.DateLayout)
		member.IsRecurring = true
		p := pattern
		member.RecurrencePattern = &p
		member.RecurrenceEndDate = in.RecurrenceEndDate
		parent := parentID
		member.ParentOrderID = &parent
		series = append(series, member)
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	return series, nil
}

// UpdateOrder merges updates into an existing order. id and createdAt never change.
// Updates are not undoable.
func (r *Repository) UpdateOrder(ctx context.Context, id string, upd models.OrderUpdate) (models.Order, error) {
	if err := ValidateUpdate(upd); err != nil {
		return models.Order{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return models.Order{}, r.failLocked("update order", ErrNotFound)
	}

	o := &r.orders[idx]
	if upd.CustomerID != nil {
		o.CustomerID = *upd.CustomerID
	}
	if upd.Items != nil {
		items := make([]models.OrderItem, len(*upd.Items))
		for i, item := range *upd.Items {
			if item.ID == "" {
				item.ID = r.newID()
			}
			items[i] = item
		}
		o.Items = items
	}
	if upd.CollectionDate != nil {
		o.CollectionDate = *upd.CollectionDate
	}
	if upd.CollectionTime != nil {
		o.CollectionTime = *upd.CollectionTime
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.AdditionalNotes != nil {
		o.AdditionalNotes = *upd.AdditionalNotes
	}
	if upd.OrderType != nil {
		o.OrderType = *upd.OrderType
	}
	o.UpdatedAt = r.now()

	updated := cloneOrder(*o)
	if err := r.persistLocked(ctx); err != nil {
		return models.Order{}, r.failLocked("update order", err)
	}
	return updated, nil
}

// DeleteOrder removes exactly one order. Staff notes referencing it are left in place.
func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return r.fail("delete order", ErrNotFound)
	}

	before := cloneOrders(r.orders)
	r.orders = append(r.orders[:idx:idx], r.orders[idx+1:]...)
	persistErr := r.persistLocked(ctx)
	r.mu.Unlock()

	r.record("delete_order_"+id, fmt.Sprintf("Deleted order #%s", id), before)
	if persistErr != nil {
		return r.fail("delete order", persistErr)
	}
	r.logger.Info("order deleted", zap.String("id", id))
	return nil
}

// GetDuplicateOrderData returns a new-order template copied from an existing order,
// collected today and pending.
func (r *Repository) GetDuplicateOrderData(id string) (models.NewOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return models.NewOrder{}, ErrNotFound
	}
	src := r.orders[idx]

	items := make([]models.OrderItem, len(src.Items))
	for i, item := range src.Items {
		item.ID = r.newID()
		items[i] = item
	}

	return models.NewOrder{
		CustomerID:      src.CustomerID,
		Items:           items,
		CollectionDate:  r.today(),
		CollectionTime:  src.CollectionTime,
		Status:          models.StatusPending,
		AdditionalNotes: src.AdditionalNotes,
		OrderType:       src.OrderType,
	}, nil
}

// Replace swaps the whole collection, used when applying a restored snapshot.
func (r *Repository) Replace(ctx context.Context, orders []models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = cloneOrders(orders)
	r.highWater = max(r.highWater, maxNumericID(r.orders))
	if err := r.persistLocked(ctx); err != nil {
		return r.failLocked("replace orders", err)
	}
	return nil
}

// LastError returns the most recent failure message, empty after a successful load.
func (r *Repository) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Repository) restore(before []models.Order) undo.Func {
	return func(ctx context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders = cloneOrders(before)
		return r.persistLocked(ctx)
	}
}

func (r *Repository) record(id, description string, before []models.Order) {
	if r.undo == nil {
		return
	}
	r.undo.Push(id, description, r.restore(before))
}

func (r *Repository) persistLocked(ctx context.Context) error {
	if err := store.SaveJSON(ctx, r.kv, store.KeyOrders, r.orders); err != nil {
		return err
	}
	return store.SaveJSON(ctx, r.kv, store.KeyOrderSequence, r.highWater)
}

func (r *Repository) nextIDLocked(pending []models.Order) string {
	next := max(r.highWater, maxNumericID(r.orders), maxNumericID(pending))
	return strconv.FormatInt(next+1, 10)
}

func (r *Repository) indexLocked(id string) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) today() string {
	return r.now().Format(models.DateLayout)
}

func (r *Repository) fail(op string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failLocked(op, err)
}

func (r *Repository) failLocked(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	r.lastErr = wrapped.Error()
	r.logger.Error("order repository failure", zap.String("op", op), zap.Error(err))
	return wrapped
}

func numericID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func maxNumericID(orders []models.Order) int64 {
	var highest int64
	for _, o := range orders {
		if n, ok := numericID(o.ID); ok && n > highest {
			highest = n
		}
	}
	return highest
}

func cloneOrder(o models.Order) models.Order {
	out := o
	if o.Items != nil {
		out.Items = append([]models.OrderItem(nil), o.Items...)
	}
	if o.RecurrencePattern != nil {
		p := *o.RecurrencePattern
		out.RecurrencePattern = &p
	}
	if o.ParentOrderID != nil {
		p := *o.ParentOrderID
		out.ParentOrderID = &p
	}
	return out
}

func cloneOrders(orders []models.Order) []models.Order {
	if orders == nil {
		return nil
	}
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func sortByCollection(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CollectionDate != orders[j].CollectionDate {
			return orders[i].CollectionDate < orders[j].CollectionDate
		}
		return orders[i].CollectionTime < orders[j].CollectionTime
	})
}
