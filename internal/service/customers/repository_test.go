package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
	"github.com/mamadbah2/butchershop/internal/service/undo"
)

var created = time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repository, *undo.Ledger, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	ledger := undo.NewLedger(zap.NewNop())
	t.Cleanup(ledger.Stop)
	repo := NewRepository(kv, ledger, zap.NewNop()).WithClock(func() time.Time { return created })
	return repo, ledger, kv
}

func input(first, last, email string) models.CustomerInput {
	return models.CustomerInput{FirstName: first, LastName: last, Email: email}
}

func TestAddCustomer(t *testing.T) {
	ctx := context.Background()
	repo, ledger, kv := newRepo(t)

	c, err := repo.AddCustomer(ctx, models.CustomerInput{
		FirstName: " Mary ", LastName: "Berry", Email: "mary@example.com", Phone: "0123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Mary", c.FirstName)
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, 1, ledger.Len())

	var persisted []models.Customer
	ok, err := store.LoadJSON(ctx, kv, store.KeyCustomers, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []models.Customer{c}, persisted)
}

func TestAddCustomerValidation(t *testing.T) {
	ctx := context.Background()
	repo, ledger, _ := newRepo(t)

	_, err := repo.AddCustomer(ctx, input("", "Berry", "m@example.com"))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = repo.AddCustomer(ctx, input("Mary", "Berry", "not-an-email"))
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = repo.AddCustomer(ctx, input("Mary", "Berry", "m@example.com"))
	require.NoError(t, err)
	_, err = repo.AddCustomer(ctx, input("Other", "Person", "M@Example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, ledger.Len())
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	repo, ledger, _ := newRepo(t)

	c, err := repo.AddCustomer(ctx, input("Mary", "Berry", "mary@example.com"))
	require.NoError(t, err)
	other, err := repo.AddCustomer(ctx, input("Paul", "Hollywood", "paul@example.com"))
	require.NoError(t, err)

	company := "Bake Off Ltd"
	updated, err := repo.UpdateCustomer(ctx, c.ID, models.CustomerUpdate{Company: &company})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Bake Off Ltd", updated.Company)
	assert.Equal(t, 2, ledger.Len(), "updates are not undoable")

	taken := "mary@example.com"
	_, err = repo.UpdateCustomer(ctx, other.ID, models.CustomerUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = repo.UpdateCustomer(ctx, "missing", models.CustomerUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCustomerAndUndo(t *testing.T) {
	ctx := context.Background()
	repo, ledger, _ := newRepo(t)

	c, err := repo.AddCustomer(ctx, input("Mary", "Berry", "mary@example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCustomer(ctx, c.ID))
	assert.Equal(t, models.UnknownCustomerName, repo.CustomerName(c.ID))

	_, err = ledger.Perform(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mary Berry", repo.CustomerName(c.ID))

	_, err = ledger.Perform(ctx)
	require.NoError(t, err)
	assert.Empty(t, repo.ListCustomers())

	assert.ErrorIs(t, repo.DeleteCustomer(ctx, "missing"), ErrNotFound)
}

func TestSearchAndList(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t)

	for _, in := range []models.CustomerInput{
		{FirstName: "Zoe", LastName: "Adams", Email: "zoe@example.com", Company: "Deli Co"},
		{FirstName: "Amy", LastName: "Adams", Email: "amy@example.com"},
		{FirstName: "Bob", LastName: "Brown", Email: "bob@farm.test", Phone: "07700 900123"},
	} {
		_, err := repo.AddCustomer(ctx, in)
		require.NoError(t, err)
	}

	list := repo.ListCustomers()
	require.Len(t, list, 3)
	assert.Equal(t, "Amy", list[0].FirstName)
	assert.Equal(t, "Zoe", list[1].FirstName)
	assert.Equal(t, "Bob", list[2].FirstName)

	assert.Len(t, repo.SearchCustomers("adams"), 2)
	assert.Len(t, repo.SearchCustomers("deli"), 1)
	assert.Len(t, repo.SearchCustomers("900123"), 1)
	assert.Len(t, repo.SearchCustomers("farm.test"), 1)
	assert.Len(t, repo.SearchCustomers(""), 3)

	found, ok := repo.FindByEmail("BOB@farm.test")
	require.True(t, ok)
	assert.Equal(t, "Brown", found.LastName)
}

func TestLoadAndReplace(t *testing.T) {
	ctx := context.Background()
	repo, _, kv := newRepo(t)

	seed := []models.Customer{{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}}
	require.NoError(t, store.SaveJSON(ctx, kv, store.KeyCustomers, seed))
	require.NoError(t, repo.Load(ctx))
	assert.Equal(t, "Ada Lovelace", repo.CustomerName("c1"))

	require.NoError(t, repo.Replace(ctx, nil))
	assert.Empty(t, repo.Snapshot())
}
