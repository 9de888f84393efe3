package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/butchershop/internal/config"
	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

func testConfig() config.Config {
	return config.Config{
		Server:   config.ServerConfig{Port: "0"},
		Store:    config.StoreConfig{Driver: config.StoreMemory},
		Schedule: config.ScheduleConfig{BackupCron: "30 20 * * *", Timezone: "UTC"},
		Auth:     config.AuthConfig{Username: "staff", Password: "sausages"},
		Shop:     config.ShopConfig{Name: "Test Butchers"},
	}
}

func startApp(t *testing.T) *App {
	t.Helper()
	a, err := Build(testConfig(), store.NewMemory(), nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop(context.Background()) })
	return a
}

func call(t *testing.T, a *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func login(t *testing.T, a *App) {
	t.Helper()
	rec := call(t, a, http.MethodPost, "/api/login", map[string]string{"username": "staff", "password": "sausages"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRequiresLogin(t *testing.T) {
	a := startApp(t)

	assert.Equal(t, http.StatusOK, call(t, a, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, a, http.MethodGet, "/api/customers", nil).Code)

	rec := call(t, a, http.MethodPost, "/api/login", map[string]string{"username": "staff", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, a)
	assert.Equal(t, http.StatusOK, call(t, a, http.MethodGet, "/api/customers", nil).Code)

	assert.Equal(t, http.StatusNoContent, call(t, a, http.MethodPost, "/api/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, a, http.MethodGet, "/api/customers", nil).Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	a := startApp(t)
	login(t, a)

	rec := call(t, a, http.MethodPost, "/api/customers", models.CustomerInput{FirstName: "Mary", LastName: "Berry", Email: "mary@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decode[models.Customer](t, rec)

	collection := time.Now().UTC().AddDate(0, 0, 7).Format(models.DateLayout)
	end := time.Now().UTC().AddDate(0, 0, 28).Format(models.DateLayout)
	weekly := models.RecurrenceWeekly
	rec = call(t, a, http.MethodPost, "/api/orders", models.NewOrder{
		CustomerID:        customer.ID,
		Items:             []models.OrderItem{{Description: "Sirloin", Quantity: 2, Unit: "kg"}},
		CollectionDate:    collection,
		IsRecurring:       true,
		RecurrencePattern: &weekly,
		RecurrenceEndDate: end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[createResponse](t, rec)
	assert.Equal(t, 4, created.SeriesCount)

	rec = call(t, a, http.MethodPost, "/api/orders", models.NewOrder{CustomerID: customer.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "items")

	rec = call(t, a, http.MethodGet, "/api/orders/search?q=mary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Order](t, rec), 4)

	assert.Equal(t, http.StatusPreconditionRequired, call(t, a, http.MethodDelete, "/api/orders/"+created.Order.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, call(t, a, http.MethodDelete, "/api/orders/"+created.Order.ID+"?confirm=true", nil).Code)
	assert.Len(t, a.Orders.ListOrders(), 3)

	rec = call(t, a, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, a.Orders.ListOrders(), 4)

	rec = call(t, a, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.Orders.ListOrders(), "one undo removes the whole series")

	rec = call(t, a, http.MethodGet, "/api/schedule/"+collection, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

type createResponse struct {
	Order       models.Order `json:"order"`
	SeriesCount int          `json:"seriesCount"`
}

func TestBackupExportImportOverHTTP(t *testing.T) {
	a := startApp(t)
	login(t, a)

	rec := call(t, a, http.MethodPost, "/api/customers", models.CustomerInput{FirstName: "Paul", LastName: "Hollywood", Email: "paul@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/backups", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	info := decode[models.BackupInfo](t, rec)
	assert.Equal(t, models.BackupManual, info.Type)

	rec = call(t, a, http.MethodGet, "/api/backups/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "butcher-shop-backup-")
	exported := rec.Body.Bytes()

	customer := a.Customers.ListCustomers()[0]
	require.NoError(t, a.Customers.DeleteCustomer(context.Background(), customer.ID))
	require.Empty(t, a.Customers.ListCustomers())

	req := httptest.NewRequest(http.MethodPost, "/api/backups/import?confirm=true", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, a.Customers.ListCustomers(), 1)
	assert.Zero(t, a.Undo.Len(), "restores clear the undo stack")

	req = httptest.NewRequest(http.MethodPost, "/api/backups/import?confirm=true", bytes.NewReader([]byte(`{"customers":[],"timestamp":"2025-01-01T00:00:00Z"}`)))
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, a.Customers.ListCustomers(), 1, "rejected imports change nothing")

	require.NoError(t, a.Customers.Replace(context.Background(), nil))
	rec = call(t, a, http.MethodPost, "/api/backups/"+info.ID+"/restore?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, a.Customers.ListCustomers(), 1)
}

func TestAutomaticBackupAndDisabledSync(t *testing.T) {
	a := startApp(t)
	ctx := context.Background()

	require.NoError(t, a.AutomaticBackup(ctx))
	list, err := a.Backups.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.BackupAutomatic, list[0].Type)
	assert.False(t, a.Scheduler.NextBackup().IsZero())

	login(t, a)
	rec := call(t, a, http.MethodPost, "/api/sync/daily", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = call(t, a, http.MethodPost, "/api/sync/everything", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, a, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"origin":"fallback"`)
	rec = call(t, a, http.MethodPost, "/api/products/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUndoCapacityFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Undo = config.UndoConfig{Capacity: 2}
	a, err := Build(cfg, store.NewMemory(), nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(a.Undo.Stop)

	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := a.Customers.AddCustomer(ctx, models.CustomerInput{FirstName: "Sam", LastName: "Jones", Email: email})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, a.Undo.Len())
}
