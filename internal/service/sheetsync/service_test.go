package sheetsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/products"
)

type fakeSheet struct {
	mu       sync.Mutex
	ops      []string
	written  map[string][][]interface{}
	existing [][]interface{}
	appended [][]interface{}
	failOn   string
	gate     chan struct{}
	clears   int
	ctxErr   error
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{written: map[string][][]interface{}{}}
}

func (f *fakeSheet) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "append "+sheetRange)
	f.appended = append(f.appended, values)
	return nil
}

func (f *fakeSheet) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "read "+sheetRange)
	return f.existing, nil
}

func (f *fakeSheet) ClearRange(ctx context.Context, sheetRange string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		f.ctxErr = err
		return err
	}
	f.clears++
	f.ops = append(f.ops, "clear "+sheetRange)
	if f.failOn == sheetRange {
		return errors.New("permission denied")
	}
	return nil
}

func (f *fakeSheet) UpdateRange(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "update "+sheetRange)
	f.written[sheetRange] = rows
	return nil
}

func (f *fakeSheet) Title(context.Context) (string, error) {
	return "Butcher Shop", nil
}

type fakeCustomers []models.Customer

func (f fakeCustomers) ListCustomers() []models.Customer { return f }

func (f fakeCustomers) CustomerName(id string) string {
	for _, c := range f {
		if c.ID == id {
			return c.FullName()
		}
	}
	return models.UnknownCustomerName
}

type fakeOrders []models.Order

func (f fakeOrders) ListOrders() []models.Order { return f }

var today = time.Date(2025, 12, 23, 7, 0, 0, 0, time.UTC)

func newService(sheet *fakeSheet) *Service {
	customers := fakeCustomers{{ID: "c1", FirstName: "Mary", LastName: "Berry", Email: "m@example.com"}}
	orders := fakeOrders{
		{ID: "1001", CustomerID: "c1", CollectionDate: "2025-12-23", Status: models.StatusConfirmed, OrderType: models.OrderTypeChristmas,
			Items: []models.OrderItem{{Description: "Turkey", Quantity: 5.5, Unit: "kg"}, {Description: "Stuffing", Quantity: 1}}},
		{ID: "1002", CustomerID: "gone", CollectionDate: "2025-12-23", Status: models.StatusCancelled, OrderType: models.OrderTypeStandard},
		{ID: "1003", CustomerID: "c1", CollectionDate: "2025-12-30", Status: models.StatusPending, OrderType: models.OrderTypeStandard},
	}
	return NewService(sheet, customers, orders, nil).WithClock(func() time.Time { return today })
}

func TestSyncClearsBeforeWriting(t *testing.T) {
	sheet := newFakeSheet()
	res, err := newService(sheet).Sync(context.Background(), TypeCustomers)
	require.NoError(t, err)

	assert.Equal(t, []string{"clear " + customersRange, "update " + customersRange}, sheet.ops)
	assert.Equal(t, 1, res.Rows["Customers"])
	rows := sheet.written[customersRange]
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, 2, rows[1][6], "order count column")
}

func TestSyncOrdersResolvesNames(t *testing.T) {
	sheet := newFakeSheet()
	_, err := newService(sheet).Sync(context.Background(), TypeOrders)
	require.NoError(t, err)

	rows := sheet.written[ordersRange]
	require.Len(t, rows, 4)
	assert.Equal(t, "Mary Berry", rows[1][1])
	assert.Equal(t, "5.5 kg Turkey; 1 Stuffing", rows[1][6])
	assert.Equal(t, models.UnknownCustomerName, rows[2][1])
}

func TestSyncDailyAndChristmas(t *testing.T) {
	sheet := newFakeSheet()
	svc := newService(sheet)

	res, err := svc.Sync(context.Background(), TypeDaily)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows["Daily Collections"], "cancelled and other days are excluded")

	res, err = svc.Sync(context.Background(), TypeChristmasOrders)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows["Christmas Orders"])
}

func TestSyncAll(t *testing.T) {
	sheet := newFakeSheet()
	res, err := newService(sheet).Sync(context.Background(), TypeAll)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 4)
	assert.Equal(t, 4, sheet.clears)
}

func TestSyncStopsOnFailure(t *testing.T) {
	sheet := newFakeSheet()
	sheet.failOn = ordersRange
	_, err := newService(sheet).Sync(context.Background(), TypeAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, 2, sheet.clears)
}

func TestSeedProductsOnlyWhenEmpty(t *testing.T) {
	sheet := newFakeSheet()
	res, err := newService(sheet).Sync(context.Background(), TypeChristmasProducts)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Len(t, sheet.written[productsHeaderRange], len(products.Fallback())+1)

	populated := newFakeSheet()
	populated.existing = [][]interface{}{{"x", "Turkey"}}
	res, err = newService(populated).Sync(context.Background(), TypeChristmasProducts)
	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Empty(t, populated.written)
}

func TestSyncTest(t *testing.T) {
	sheet := newFakeSheet()
	res, err := newService(sheet).Sync(context.Background(), TypeTest)
	require.NoError(t, err)
	assert.Equal(t, "Butcher Shop", res.Title)
	require.Len(t, sheet.appended, 1)
	assert.Equal(t, "connection ok", sheet.appended[0][2])
}

func TestSyncRejectsUnknownAndUnconfigured(t *testing.T) {
	_, err := newService(newFakeSheet()).Sync(context.Background(), "everything")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = NewService(nil, fakeCustomers{}, fakeOrders{}, nil).Sync(context.Background(), TypeOrders)
	assert.ErrorIs(t, err, ErrNotConfigured)

	typ, err := ParseType("christmas-orders")
	require.NoError(t, err)
	assert.Equal(t, TypeChristmasOrders, typ)
}

func TestConcurrentSyncsAreCoalesced(t *testing.T) {
	sheet := newFakeSheet()
	sheet.gate = make(chan struct{})
	svc := newService(sheet)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Sync(context.Background(), TypeCustomers)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(sheet.gate)
	wg.Wait()

	assert.Equal(t, 1, sheet.clears)
}

func TestSharedSyncSurvivesInitiatorCancel(t *testing.T) {
	sheet := newFakeSheet()
	sheet.gate = make(chan struct{})
	svc := newService(sheet)

	initiatorCtx, cancel := context.WithCancel(context.Background())
	initiatorErr := make(chan error, 1)
	go func() {
		_, err := svc.Sync(initiatorCtx, TypeCustomers)
		initiatorErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	followerErr := make(chan error, 1)
	go func() {
		_, err := svc.Sync(context.Background(), TypeCustomers)
		followerErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-initiatorErr, context.Canceled)

	close(sheet.gate)
	require.NoError(t, <-followerErr)
	assert.NoError(t, sheet.ctxErr)
	assert.Equal(t, 1, sheet.clears)
	assert.NotEmpty(t, sheet.written[customersRange])
}
