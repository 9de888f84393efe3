package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

// CacheTTL bounds how long remote products are reused without a fetch.
const CacheTTL = 24 * time.Hour

var (
	// ErrRemoteNotConnected is returned by RefreshProducts when no remote source is reachable.
	ErrRemoteNotConnected = errors.New("product source is not connected")
	// ErrEmptyRemote is recorded when the remote source returns no products.
	ErrEmptyRemote = errors.New("product source returned no products")
)

// Source is a remote catalog of seasonal products.
type Source interface {
	Connected() bool
	FetchProducts(ctx context.Context) ([]models.SeasonalProduct, error)
}

// Origin tells where the current product list came from.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

// Catalog resolves seasonal products from cache, then the remote source, then the fallback list.
type Catalog struct {
	mu         sync.RWMutex
	kv         store.KV
	source     Source
	products   []models.SeasonalProduct
	origin     Origin
	lastErr    string
	generation uint64
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalog builds a catalog. source may be nil when no spreadsheet is configured.
func NewCatalog(kv store.KV, source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		kv:       kv,
		source:   source,
		products: Fallback(),
		origin:   OriginFallback,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	c.now = now
	return c
}

// LoadProducts never fails: remote problems degrade to the fallback list and are kept in LastError.
func (c *Catalog) LoadProducts(ctx context.Context) []models.SeasonalProduct {
	gen := c.nextGeneration()

	if cached, ok := c.readCache(ctx); ok {
		c.apply(gen, cached, OriginCache, "")
		return c.Products()
	}

	if !c.connected() {
		c.apply(gen, Fallback(), OriginFallback, "")
		return c.Products()
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("falling back to built-in products", zap.Error(err))
		c.apply(gen, Fallback(), OriginFallback, err.Error())
		return c.Products()
	}

	if c.apply(gen, fetched, OriginRemote, "") {
		c.writeCache(ctx, fetched)
	}
	return c.Products()
}

// RefreshProducts bypasses the cache and requires a connected source.
func (c *Catalog) RefreshProducts(ctx context.Context) ([]models.SeasonalProduct, error) {
	gen := c.nextGeneration()

	if !c.connected() {
		c.setError(ErrRemoteNotConnected.Error())
		return nil, ErrRemoteNotConnected
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		c.setError(err.Error())
		return nil, fmt.Errorf("refresh products: %w", err)
	}

	if c.apply(gen, fetched, OriginRemote, "") {
		c.writeCache(ctx, fetched)
	}
	return c.Products(), nil
}

// ClearCache removes the cached list and its expiry without reloading.
func (c *Catalog) ClearCache(ctx context.Context) error {
	if err := c.kv.Delete(ctx, store.KeyProductsCache); err != nil {
		return fmt.Errorf("clear product cache: %w", err)
	}
	if err := c.kv.Delete(ctx, store.KeyProductsExpiry); err != nil {
		return fmt.Errorf("clear product cache expiry: %w", err)
	}
	return nil
}

// IsCacheExpired reports whether the cache expiry is missing or in the past.
func (c *Catalog) IsCacheExpired(ctx context.Context) bool {
	expiry, ok := c.readExpiry(ctx)
	if !ok {
		return true
	}
	return !c.now().Before(expiry)
}

// Products returns the current list.
func (c *Catalog) Products() []models.SeasonalProduct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.SeasonalProduct{}, c.products...)
}

// Origin returns where the current list came from.
func (c *Catalog) Origin() Origin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

// LastError returns the most recent failure reason, empty after a clean load.
func (c *Catalog) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Catalog) connected() bool {
	return c.source != nil && c.source.Connected()
}

func (c *Catalog) fetch(ctx context.Context) ([]models.SeasonalProduct, error) {
	fetched, err := c.source.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	if len(fetched) == 0 {
		return nil, ErrEmptyRemote
	}
	return fetched, nil
}

func (c *Catalog) nextGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// apply installs a result only if no newer load started in the meantime.
func (c *Catalog) apply(gen uint64, list []models.SeasonalProduct, origin Origin, errMsg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding superseded product load", zap.Uint64("generation", gen))
		return false
	}
	c.products = append([]models.SeasonalProduct{}, list...)
	c.origin = origin
	c.lastErr = errMsg
	return true
}

func (c *Catalog) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *Catalog) readCache(ctx context.Context) ([]models.SeasonalProduct, bool) {
	if c.IsCacheExpired(ctx) {
		return nil, false
	}
	var cached []models.SeasonalProduct
	ok, err := store.LoadJSON(ctx, c.kv, store.KeyProductsCache, &cached)
	if err != nil {
		c.logger.Warn("discarding unreadable product cache", zap.Error(err))
		_ = c.ClearCache(ctx)
		return nil, false
	}
	if !ok || len(cached) == 0 {
		return nil, false
	}
	return cached, true
}

func (c *Catalog) readExpiry(ctx context.Context) (time.Time, bool) {
	raw, ok, err := c.kv.Get(ctx, store.KeyProductsExpiry)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (c *Catalog) writeCache(ctx context.Context, list []models.SeasonalProduct) {
	if err := store.SaveJSON(ctx, c.kv, store.KeyProductsCache, list); err != nil {
		c.logger.Warn("failed to cache products", zap.Error(err))
		return
	}
	expiry := c.now().Add(CacheTTL).UnixMilli()
	if err := c.kv.Set(ctx, store.KeyProductsExpiry, strconv.FormatInt(expiry, 10)); err != nil {
		c.logger.Warn("failed to store product cache expiry", zap.Error(err))
	}
}
