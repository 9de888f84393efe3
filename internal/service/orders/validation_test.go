package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var v *ValidationError
	require.True(t, errors.As(err, &v), "expected validation error, got %v", err)
	return v.Fields
}

func TestValidateNewOrderAccepts(t *testing.T) {
	in := standardOrder("c1", "2025-02-20")
	assert.NoError(t, ValidateNewOrder(in, fixedNow))

	in.IsRecurring = true
	in.RecurrencePattern = pattern(models.RecurrenceFortnightly)
	in.RecurrenceEndDate = "2025-04-01"
	assert.NoError(t, ValidateNewOrder(in, fixedNow))
}

func TestValidateNewOrderRejects(t *testing.T) {
	err := ValidateNewOrder(models.NewOrder{}, fixedNow)
	assert.True(t, IsValidation(err))
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "customerId")
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "collectionDate")

	past := standardOrder("c1", "2025-02-19")
	assert.Contains(t, fieldsOf(t, ValidateNewOrder(past, fixedNow)), "collectionDate")

	zero := standardOrder("c1", "2025-03-01")
	zero.Items[0].Quantity = 0
	assert.Contains(t, fieldsOf(t, ValidateNewOrder(zero, fixedNow)), "items")

	ready := standardOrder("c1", "2025-03-01")
	ready.Status = "ready"
	assert.Contains(t, fieldsOf(t, ValidateNewOrder(ready, fixedNow)), "status")

	recurring := standardOrder("c1", "2025-03-01")
	recurring.IsRecurring = true
	recurring.RecurrenceEndDate = "2025-03-01"
	fields = fieldsOf(t, ValidateNewOrder(recurring, fixedNow))
	assert.Contains(t, fields, "recurrencePattern")
	assert.Equal(t, "end date must be after the collection date", fields["recurrenceEndDate"])
}

func TestValidateUpdate(t *testing.T) {
	assert.NoError(t, ValidateUpdate(models.OrderUpdate{}))

	bad := models.OrderStatus("ready")
	assert.True(t, IsValidation(ValidateUpdate(models.OrderUpdate{Status: &bad})))

	empty := []models.OrderItem{}
	assert.True(t, IsValidation(ValidateUpdate(models.OrderUpdate{Items: &empty})))
}

func TestValidateUpdateMatchesCreationRules(t *testing.T) {
	blank := "  "
	bogus := models.OrderType("bogus")
	unnamed := []models.OrderItem{{Description: "", Quantity: 1}}
	zero := []models.OrderItem{{Description: "Brisket", Quantity: 0}}
	badDate := "01/03/2025"

	assert.Equal(t, "customer is required", fieldsOf(t, ValidateUpdate(models.OrderUpdate{CustomerID: &blank}))["customerId"])
	assert.Equal(t, "unknown order type bogus", fieldsOf(t, ValidateUpdate(models.OrderUpdate{OrderType: &bogus}))["orderType"])
	assert.Equal(t, "every item needs a description", fieldsOf(t, ValidateUpdate(models.OrderUpdate{Items: &unnamed}))["items"])
	assert.Equal(t, "item quantities must be greater than zero", fieldsOf(t, ValidateUpdate(models.OrderUpdate{Items: &zero}))["items"])
	assert.Equal(t, "collection date must be YYYY-MM-DD", fieldsOf(t, ValidateUpdate(models.OrderUpdate{CollectionDate: &badDate}))["collectionDate"])

	all := fieldsOf(t, ValidateUpdate(models.OrderUpdate{CustomerID: &blank, OrderType: &bogus, Items: &unnamed}))
	assert.Len(t, all, 3)

	christmas := models.OrderTypeChristmas
	customer := "c9"
	items := []models.OrderItem{{Description: "Goose", Quantity: 1}}
	assert.NoError(t, ValidateUpdate(models.OrderUpdate{CustomerID: &customer, OrderType: &christmas, Items: &items}))
}
