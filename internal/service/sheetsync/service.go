package sheetsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/sheets"
	"github.com/mamadbah2/butchershop/internal/service/products"
)

// Type selects what a sync pushes.
type Type string

const (
	TypeCustomers         Type = "customers"
	TypeOrders            Type = "orders"
	TypeDaily             Type = "daily"
	TypeAll               Type = "all"
	TypeChristmasProducts Type = "christmas-products"
	TypeChristmasOrders   Type = "christmas-orders"
	TypeTest              Type = "test"
)

// Types lists every accepted sync type.
var Types = []Type{TypeCustomers, TypeOrders, TypeDaily, TypeAll, TypeChristmasProducts, TypeChristmasOrders, TypeTest}

// Destination ranges. Each is cleared before it is rewritten.
const (
	customersRange       = "Customers!A1:H"
	ordersRange          = "Orders!A1:L"
	dailyRange           = "Daily Collections!A1:G"
	christmasOrdersRange = "Christmas Orders!A1:G"
	productsHeaderRange  = "Christmas Products!A1:D"
	syncLogRange         = "Sync Log!A:C"
)

// runTimeout bounds a shared run once it no longer follows any caller's cancellation.
const runTimeout = 2 * time.Minute

var (
	ErrNotConfigured = errors.New("spreadsheet sync is not configured")
	ErrUnknownType   = errors.New("unknown sync type")
)

// ParseType validates a sync type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

type CustomerSource interface {
	ListCustomers() []models.Customer
	CustomerName(id string) string
}

type OrderSource interface {
	ListOrders() []models.Order
}

// Result reports what a sync wrote, keyed by destination sheet.
type Result struct {
	Type     Type           `json:"type"`
	Rows     map[string]int `json:"rows"`
	Title    string         `json:"spreadsheetTitle,omitempty"`
	Seeded   bool           `json:"seeded,omitempty"`
	SyncedAt time.Time      `json:"syncedAt"`
}

// Service pushes repository data one way to the spreadsheet. It never mutates the repositories.
type Service struct {
	sheet     sheets.Repository
	customers CustomerSource
	orders    OrderSource
	group     singleflight.Group
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the sync service. sheet may be nil, in which case every sync fails with ErrNotConfigured.
func NewService(sheet sheets.Repository, customers CustomerSource, orders OrderSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sheet:     sheet,
		customers: customers,
		orders:    orders,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for the daily sheet.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Enabled reports whether a spreadsheet is configured.
func (s *Service) Enabled() bool {
	return s.sheet != nil
}

// Sync runs one sync. Concurrent calls for the same type share a single run.
func (s *Service) Sync(ctx context.Context, typ Type) (Result, error) {
	if s.sheet == nil {
		return Result{}, ErrNotConfigured
	}
	if _, err := ParseType(string(typ)); err != nil {
		return Result{}, err
	}

	// The shared run outlives the caller that started it; each caller stops waiting on its own ctx.
	ch := s.group.DoChan(string(typ), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runTimeout)
		defer cancel()
		return s.run(runCtx, typ)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			s.logger.Error("sync failed", zap.String("type", string(typ)), zap.Error(out.Err))
			return Result{}, out.Err
		}
		res := out.Val.(Result)
		s.logger.Info("sync completed", zap.String("type", string(typ)), zap.Bool("shared", out.Shared), zap.Any("rows", res.Rows))
		return res, nil
	}
}

func (s *Service) run(ctx context.Context, typ Type) (Result, error) {
	res := Result{Type: typ, Rows: map[string]int{}, SyncedAt: s.now()}

	var err error
	switch typ {
	case TypeCustomers:
		err = s.pushCustomers(ctx, &res)
	case TypeOrders:
		err = s.pushOrders(ctx, &res)
	case TypeDaily:
		err = s.pushDaily(ctx, &res)
	case TypeChristmasOrders:
		err = s.pushChristmasOrders(ctx, &res)
	case TypeChristmasProducts:
		err = s.seedProducts(ctx, &res)
	case TypeTest:
		err = s.test(ctx, &res)
	case TypeAll:
		for _, step := range []func(context.Context, *Result) error{
			s.pushCustomers, s.pushOrders, s.pushDaily, s.pushChristmasOrders,
		} {
			if err = step(ctx, &res); err != nil {
				break
			}
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("sync %s: %w", typ, err)
	}
	return res, nil
}

func (s *Service) pushCustomers(ctx context.Context, res *Result) error {
	customers := s.customers.ListCustomers()
	rows := [][]interface{}{{"ID", "First Name", "Last Name", "Email", "Phone", "Company", "Orders", "Created"}}

	counts := map[string]int{}
	for _, o := range s.orders.ListOrders() {
		counts[o.CustomerID]++
	}
	for _, c := range customers {
		rows = append(rows, []interface{}{
			c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, counts[c.ID], formatTime(c.CreatedAt),
		})
	}
	return s.replace(ctx, customersRange, rows, res)
}

func (s *Service) pushOrders(ctx context.Context, res *Result) error {
	rows := [][]interface{}{{
		"Order ID", "Customer", "Collection Date", "Collection Time", "Status", "Type",
		"Items", "Notes", "Recurring", "Pattern", "Series", "Updated",
	}}
	for _, o := range s.orders.ListOrders() {
		pattern, parent := "", ""
		if o.RecurrencePattern != nil {
			pattern = string(*o.RecurrencePattern)
		}
		if o.ParentOrderID != nil {
			parent = *o.ParentOrderID
		}
		rows = append(rows, []interface{}{
			o.ID, s.customers.CustomerName(o.CustomerID), o.CollectionDate, o.CollectionTime,
			string(o.Status), string(o.OrderType), itemsSummary(o.Items), o.AdditionalNotes,
			yesNo(o.IsRecurring), pattern, parent, formatTime(o.UpdatedAt),
		})
	}
	return s.replace(ctx, ordersRange, rows, res)
}

func (s *Service) pushDaily(ctx context.Context, res *Result) error {
	today := s.now().Format(models.DateLayout)
	return s.replace(ctx, dailyRange, s.collectionRows(func(o models.Order) bool {
		return o.CollectionDate == today
	}), res)
}

func (s *Service) pushChristmasOrders(ctx context.Context, res *Result) error {
	return s.replace(ctx, christmasOrdersRange, s.collectionRows(func(o models.Order) bool {
		return o.OrderType == models.OrderTypeChristmas
	}), res)
}

func (s *Service) collectionRows(keep func(models.Order) bool) [][]interface{} {
	rows := [][]interface{}{{"Order ID", "Customer", "Collection Date", "Collection Time", "Status", "Items", "Notes"}}
	for _, o := range s.orders.ListOrders() {
		if o.Status == models.StatusCancelled || !keep(o) {
			continue
		}
		rows = append(rows, []interface{}{
			o.ID, s.customers.CustomerName(o.CustomerID), o.CollectionDate, o.CollectionTime,
			string(o.Status), itemsSummary(o.Items), o.AdditionalNotes,
		})
	}
	return rows
}

// seedProducts writes the built-in range only when the product sheet is empty.
func (s *Service) seedProducts(ctx context.Context, res *Result) error {
	existing, err := s.sheet.ReadRange(ctx, products.ProductsRange)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		res.Rows[sheetName(productsHeaderRange)] = len(existing)
		return nil
	}

	rows := [][]interface{}{{"ID", "Name", "Unit", "Description"}}
	for _, p := range products.Fallback() {
		rows = append(rows, []interface{}{p.ID, p.Name, p.Unit, p.Description})
	}
	if err := s.replace(ctx, productsHeaderRange, rows, res); err != nil {
		return err
	}
	res.Seeded = true
	return nil
}

func (s *Service) test(ctx context.Context, res *Result) error {
	title, err := s.sheet.Title(ctx)
	if err != nil {
		return err
	}
	res.Title = title
	return s.sheet.WriteRow(ctx, syncLogRange, []interface{}{formatTime(res.SyncedAt), "test", "connection ok"})
}

func (s *Service) replace(ctx context.Context, sheetRange string, rows [][]interface{}, res *Result) error {
	if err := s.sheet.ClearRange(ctx, sheetRange); err != nil {
		return err
	}
	if err := s.sheet.UpdateRange(ctx, sheetRange, rows); err != nil {
		return err
	}
	res.Rows[sheetName(sheetRange)] = len(rows) - 1
	return nil
}

func sheetName(sheetRange string) string {
	name, _, _ := strings.Cut(sheetRange, "!")
	return name
}

func itemsSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		if item.Unit != "" {
			qty += " " + item.Unit
		}
		parts = append(parts, qty+" "+item.Description)
	}
	return strings.Join(parts, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
