package customers

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
	"github.com/mamadbah2/butchershop/internal/service/undo"
)

var (
	ErrNotFound       = errors.New("customer not found")
	ErrInvalidName    = errors.New("first and last name are required")
	ErrInvalidEmail   = errors.New("a valid email is required")
	ErrDuplicateEmail = errors.New("a customer with this email already exists")
)

// UndoRecorder receives reversible operations.
type UndoRecorder interface {
	Push(id, description string, fn undo.Func)
}

// Repository owns the customer collection.
type Repository struct {
	mu        sync.RWMutex
	kv        store.KV
	undo      UndoRecorder
	customers []models.Customer
	lastErr   string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewRepository wires a customer repository.
func NewRepository(kv store.KV, recorder UndoRecorder, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		kv:     kv,
		undo:   recorder,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Load reads the collection from the store.
func (r *Repository) Load(ctx context.Context) error {
	var loaded []models.Customer
	if _, err := store.LoadJSON(ctx, r.kv, store.KeyCustomers, &loaded); err != nil {
		return r.fail("load customers", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = loaded
	r.lastErr = ""
	r.logger.Info("customers loaded", zap.Int("count", len(loaded)))
	return nil
}

// Validate checks a customer payload.
func Validate(in models.CustomerInput) error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return ErrInvalidName
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// AddCustomer validates and stores a new customer.
func (r *Repository) AddCustomer(ctx context.Context, in models.CustomerInput) (models.Customer, error) {
	if err := Validate(in); err != nil {
		return models.Customer{}, err
	}

	r.mu.Lock()
	if r.emailTakenLocked(in.Email, "") {
		r.mu.Unlock()
		return models.Customer{}, ErrDuplicateEmail
	}

	before := cloneCustomers(r.customers)
	customer := models.Customer{
		ID:        r.newID(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		CreatedAt: r.now(),
	}
	r.customers = append([]models.Customer{customer}, r.customers...)
	persistErr := r.persistLocked(ctx)
	r.mu.Unlock()

	r.record("add_customer_"+customer.ID, "Added customer "+customer.FullName(), before)
	if persistErr != nil {
		return models.Customer{}, r.fail("add customer", persistErr)
	}
	r.logger.Info("customer created", zap.String("id", customer.ID))
	return customer, nil
}

// UpdateCustomer edits a customer in place; id and createdAt never change. Not undoable.
func (r *Repository) UpdateCustomer(ctx context.Context, id string, upd models.CustomerUpdate) (models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return models.Customer{}, ErrNotFound
	}

	c := r.customers[idx]
	if upd.FirstName != nil {
		c.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		c.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		c.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Phone != nil {
		c.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Company != nil {
		c.Company = strings.TrimSpace(*upd.Company)
	}

	if err := Validate(models.CustomerInput{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}); err != nil {
		return models.Customer{}, err
	}
	if r.emailTakenLocked(c.Email, id) {
		return models.Customer{}, ErrDuplicateEmail
	}

	r.customers[idx] = c
	if err := r.persistLocked(ctx); err != nil {
		return models.Customer{}, r.failLocked("update customer", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer. Their orders keep the dangling reference.
func (r *Repository) DeleteCustomer(ctx context.Context, id string) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return ErrNotFound
	}
	removed := r.customers[idx]
	before := cloneCustomers(r.customers)
	r.customers = append(r.customers[:idx:idx], r.customers[idx+1:]...)
	persistErr := r.persistLocked(ctx)
	r.mu.Unlock()

	r.record("delete_customer_"+id, "Deleted customer "+removed.FullName(), before)
	if persistErr != nil {
		return r.fail("delete customer", persistErr)
	}
	r.logger.Info("customer deleted", zap.String("id", id))
	return nil
}

// GetCustomerByID returns a customer by id.
func (r *Repository) GetCustomerByID(id string) (models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return models.Customer{}, ErrNotFound
	}
	return r.customers[idx], nil
}

// FindByEmail looks a customer up by email, case-insensitively.
func (r *Repository) FindByEmail(email string) (models.Customer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.customers {
		if strings.ToLower(c.Email) == needle {
			return c, true
		}
	}
	return models.Customer{}, false
}

// CustomerName returns the display name, or the unknown placeholder for dangling ids.
func (r *Repository) CustomerName(id string) string {
	c, err := r.GetCustomerByID(id)
	if err != nil {
		return models.UnknownCustomerName
	}
	return c.FullName()
}

// ListCustomers returns all customers sorted by last then first name.
func (r *Repository) ListCustomers() []models.Customer {
	r.mu.RLock()
	out := cloneCustomers(r.customers)
	r.mu.RUnlock()
	if out == nil {
		out = []models.Customer{}
	}
	sortByName(out)
	return out
}

// Snapshot returns the collection in stored order for backups.
func (r *Repository) Snapshot() []models.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := cloneCustomers(r.customers)
	if out == nil {
		out = []models.Customer{}
	}
	return out
}

// SearchCustomers matches name, email, phone or company.
func (r *Repository) SearchCustomers(query string) []models.Customer {
	needle := strings.ToLower(strings.TrimSpace(query))
	all := r.ListCustomers()
	if needle == "" {
		return all
	}
	out := make([]models.Customer, 0)
	for _, c := range all {
		haystack := strings.ToLower(strings.Join([]string{c.FullName(), c.Email, c.Phone, c.Company}, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, c)
		}
	}
	return out
}

// Replace swaps the whole collection, used when applying a restored snapshot.
func (r *Repository) Replace(ctx context.Context, customers []models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = cloneCustomers(customers)
	if err := r.persistLocked(ctx); err != nil {
		return r.failLocked("replace customers", err)
	}
	return nil
}

// LastError returns the most recent persistence failure message.
func (r *Repository) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Repository) record(id, description string, before []models.Customer) {
	if r.undo == nil {
		return
	}
	r.undo.Push(id, description, func(ctx context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.customers = cloneCustomers(before)
		return r.persistLocked(ctx)
	})
}

func (r *Repository) persistLocked(ctx context.Context) error {
	return store.SaveJSON(ctx, r.kv, store.KeyCustomers, r.customers)
}

func (r *Repository) emailTakenLocked(email, exceptID string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.customers {
		if c.ID != exceptID && strings.ToLower(c.Email) == needle {
			return true
		}
	}
	return false
}

func (r *Repository) indexLocked(id string) int {
	for i := range r.customers {
		if r.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) fail(op string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failLocked(op, err)
}

func (r *Repository) failLocked(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	r.lastErr = wrapped.Error()
	r.logger.Error("customer repository failure", zap.String("op", op), zap.Error(err))
	return wrapped
}

func cloneCustomers(in []models.Customer) []models.Customer {
	if in == nil {
		return nil
	}
	return append([]models.Customer(nil), in...)
}

func sortByName(customers []models.Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		li, lj := strings.ToLower(customers[i].LastName), strings.ToLower(customers[j].LastName)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(customers[i].FirstName) < strings.ToLower(customers[j].FirstName)
	})
}
