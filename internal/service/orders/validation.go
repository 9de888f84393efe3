package orders

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// ValidationError carries per-field messages for inline display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ValidateNewOrder applies the form rules before an order reaches the repository.
// today is the shop's current local date.
func ValidateNewOrder(in models.NewOrder, today time.Time) error {
	fields := make(map[string]string)

	if strings.TrimSpace(in.CustomerID) == "" {
		fields["customerId"] = "customer is required"
	}

	if msg := checkItems(in.Items); msg != "" {
		fields["items"] = msg
	}

	todayStr := today.Format(models.DateLayout)
	collection, err := time.Parse(models.DateLayout, in.CollectionDate)
	switch {
	case strings.TrimSpace(in.CollectionDate) == "":
		fields["collectionDate"] = "collection date is required"
	case err != nil:
		fields["collectionDate"] = "collection date must be YYYY-MM-DD"
	case in.CollectionDate < todayStr:
		fields["collectionDate"] = "collection date cannot be in the past"
	}

	if in.Status != "" && !in.Status.Valid() {
		fields["status"] = "unknown status " + string(in.Status)
	}
	if in.OrderType != "" && !knownOrderType(in.OrderType) {
		fields["orderType"] = "unknown order type " + string(in.OrderType)
	}

	if in.IsRecurring {
		if in.RecurrencePattern == nil || in.RecurrencePattern.IntervalDays() == 0 {
			fields["recurrencePattern"] = "choose weekly or fortnightly"
		}
		end, endErr := time.Parse(models.DateLayout, in.RecurrenceEndDate)
		switch {
		case strings.TrimSpace(in.RecurrenceEndDate) == "":
			fields["recurrenceEndDate"] = "end date is required for recurring orders"
		case endErr != nil:
			fields["recurrenceEndDate"] = "end date must be YYYY-MM-DD"
		case err == nil && !end.After(collection):
			fields["recurrenceEndDate"] = "end date must be after the collection date"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateUpdate applies the creation rules to the fields present in an update,
// so an edit cannot leave an order in a state AddOrder would refuse.
func ValidateUpdate(upd models.OrderUpdate) error {
	fields := make(map[string]string)
	if upd.CustomerID != nil && strings.TrimSpace(*upd.CustomerID) == "" {
		fields["customerId"] = "customer is required"
	}
	if upd.Items != nil {
		if msg := checkItems(*upd.Items); msg != "" {
			fields["items"] = msg
		}
	}
	if upd.CollectionDate != nil {
		if _, err := time.Parse(models.DateLayout, *upd.CollectionDate); err != nil {
			fields["collectionDate"] = "collection date must be YYYY-MM-DD"
		}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		fields["status"] = "unknown status " + string(*upd.Status)
	}
	if upd.OrderType != nil && !knownOrderType(*upd.OrderType) {
		fields["orderType"] = "unknown order type " + string(*upd.OrderType)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkItems(items []models.OrderItem) string {
	if len(items) == 0 {
		return "at least one item is required"
	}
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return "every item needs a description"
		}
		if item.Quantity <= 0 {
			return "item quantities must be greater than zero"
		}
	}
	return ""
}

func knownOrderType(t models.OrderType) bool {
	return t == models.OrderTypeStandard || t == models.OrderTypeChristmas
}
