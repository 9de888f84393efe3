package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/auth"
	"github.com/mamadbah2/butchershop/internal/service/backup"
	"github.com/mamadbah2/butchershop/internal/service/customers"
	"github.com/mamadbah2/butchershop/internal/service/errlog"
	"github.com/mamadbah2/butchershop/internal/service/notes"
	"github.com/mamadbah2/butchershop/internal/service/notify"
	"github.com/mamadbah2/butchershop/internal/service/orders"
	"github.com/mamadbah2/butchershop/internal/service/products"
	"github.com/mamadbah2/butchershop/internal/service/sheetsync"
	"github.com/mamadbah2/butchershop/internal/service/templates"
	"github.com/mamadbah2/butchershop/internal/service/undo"
)

// Restorer applies a snapshot to the live repositories.
type Restorer interface {
	Restore(ctx context.Context, snap models.Snapshot) error
}

// JobSchedule exposes when the timed jobs fire next; zero means not scheduled.
type JobSchedule interface {
	NextBackup() time.Time
	NextSync() time.Time
}

// Deps carries every component the HTTP layer talks to.
type Deps struct {
	Auth      *auth.Gate
	Customers *customers.Repository
	Orders    *orders.Repository
	Notes     *notes.Service
	Templates *templates.Service
	Notify    *notify.Service
	Undo      *undo.Ledger
	Products  *products.Catalog
	Backups   *backup.Service
	Sync      *sheetsync.Service
	Errors    *errlog.Log
	Restorer  Restorer
	Schedule  JobSchedule
	ShopName  string
	Location  *time.Location
}

// Handler adapts the shop services to HTTP.
type Handler struct {
	Deps
	logger      *zap.Logger
	now         func() time.Time
	importLimit int64
}

func New(deps Deps, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Handler{Deps: deps, logger: logger, now: time.Now, importLimit: maxImportSize}
}

// WithClock replaces the time source.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) today() time.Time {
	return h.now().In(h.Location)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// confirmed enforces explicit confirmation on destructive requests.
func confirmed(c *gin.Context) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation required: repeat the request with ?confirm=true"})
	return false
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// fail maps a service error to a response. Unexpected errors are recorded in the error log.
func (h *Handler) fail(c *gin.Context, source string, err error) {
	var verr *orders.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("source", source), zap.Error(err))
		if h.Errors != nil {
			h.Errors.Record(c.Request.Context(), source, err)
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, customers.ErrNotFound),
		errors.Is(err, notes.ErrNotFound),
		errors.Is(err, templates.ErrNotFound),
		errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidRecurrence),
		errors.Is(err, orders.ErrEmptySeries),
		errors.Is(err, orders.ErrSeriesTooLong),
		errors.Is(err, customers.ErrInvalidName),
		errors.Is(err, customers.ErrInvalidEmail),
		errors.Is(err, notes.ErrEmptyContent),
		errors.Is(err, notes.ErrNoOrder),
		errors.Is(err, templates.ErrInvalidFields),
		errors.Is(err, backup.ErrInvalidBackup),
		errors.Is(err, backup.ErrInvalidType),
		errors.Is(err, sheetsync.ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, customers.ErrDuplicateEmail),
		errors.Is(err, undo.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, products.ErrRemoteNotConnected),
		errors.Is(err, sheetsync.ErrNotConfigured),
		errors.Is(err, notify.ErrDispatchDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
