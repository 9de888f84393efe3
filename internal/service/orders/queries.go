package orders

import (
	"strings"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// GetOrderByID returns a copy of the order with the given id.
func (r *Repository) GetOrderByID(id string) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(r.orders[idx]), nil
}

// ListOrders returns the whole collection, newest first.
func (r *Repository) ListOrders() []models.Order {
	return r.filter(func(models.Order) bool { return true })
}

// Snapshot is ListOrders for backup callers.
func (r *Repository) Snapshot() []models.Order {
	return r.ListOrders()
}

// GetOrdersByCustomerID lists the customer's orders by collection date.
func (r *Repository) GetOrdersByCustomerID(customerID string) []models.Order {
	out := r.filter(func(o models.Order) bool { return o.CustomerID == customerID })
	sortByCollection(out)
	return out
}

// GetOrdersByStatus lists orders in the given status.
func (r *Repository) GetOrdersByStatus(status models.OrderStatus) []models.Order {
	return r.filter(func(o models.Order) bool { return o.Status == status })
}

// GetOrdersByParentID lists every member of a recurring series.
func (r *Repository) GetOrdersByParentID(parentID string) []models.Order {
	out := r.filter(func(o models.Order) bool {
		return o.ParentOrderID != nil && *o.ParentOrderID == parentID
	})
	sortByCollection(out)
	return out
}

// GetOrdersByDateRange lists orders collected between start and end inclusive (ISO dates).
func (r *Repository) GetOrdersByDateRange(start, end string) []models.Order {
	out := r.filter(func(o models.Order) bool {
		return o.CollectionDate >= start && o.CollectionDate <= end
	})
	sortByCollection(out)
	return out
}

// GetOrdersForDate lists orders collected on date, ordered by collection time.
func (r *Repository) GetOrdersForDate(date string) []models.Order {
	return r.GetOrdersByDateRange(date, date)
}

// GetCollectionCalendar counts non-cancelled collections per day between start and end inclusive.
func (r *Repository) GetCollectionCalendar(start, end string) map[string]int {
	calendar := make(map[string]int)
	for _, o := range r.GetOrdersByDateRange(start, end) {
		if o.Status == models.StatusCancelled {
			continue
		}
		calendar[o.CollectionDate]++
	}
	return calendar
}

// SearchOrders matches the query against order id, customer name, item descriptions and notes.
// Orders collected before today are never returned.
func (r *Repository) SearchOrders(query string) []models.Order {
	needle := strings.ToLower(strings.TrimSpace(query))
	today := r.today()

	out := r.filter(func(o models.Order) bool {
		if o.CollectionDate < today {
			return false
		}
		if needle == "" {
			return true
		}
		if strings.Contains(strings.ToLower(o.ID), needle) ||
			strings.Contains(strings.ToLower(o.AdditionalNotes), needle) {
			return true
		}
		for _, item := range o.Items {
			if strings.Contains(strings.ToLower(item.Description), needle) {
				return true
			}
		}
		if r.customers != nil {
			return strings.Contains(strings.ToLower(r.customers.CustomerName(o.CustomerID)), needle)
		}
		return false
	})
	sortByCollection(out)
	return out
}

// GetOrderStats summarises the collection relative to today.
func (r *Repository) GetOrderStats() models.OrderStats {
	today := r.today()

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.OrderStats{
		Total:    len(r.orders),
		ByStatus: make(map[models.OrderStatus]int, len(models.Statuses)),
	}
	for _, status := range models.Statuses {
		stats.ByStatus[status] = 0
	}
	for _, o := range r.orders {
		stats.ByStatus[o.Status]++
		active := o.Status != models.StatusCancelled && o.Status != models.StatusCollected
		switch {
		case o.CollectionDate == today && active:
			stats.TodayCount++
		case o.CollectionDate > today && active:
			stats.UpcomingCount++
		}
		if o.OrderType == models.OrderTypeChristmas {
			stats.ChristmasCount++
		}
		if o.IsRecurring {
			stats.RecurringCount++
		}
	}
	return stats
}

func (r *Repository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}
