package models

import "time"

// DateLayout is the ISO date format used for collection dates.
const DateLayout = "2006-01-02"

// OrderStatus enumerates the lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCollected OrderStatus = "collected"
	StatusCancelled OrderStatus = "cancelled"
)

// Statuses lists the canonical status set in display order.
var Statuses = []OrderStatus{StatusPending, StatusConfirmed, StatusCollected, StatusCancelled}

// Valid reports whether the status belongs to the canonical set.
func (s OrderStatus) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// OrderType separates everyday orders from the Christmas flow.
type OrderType string

const (
	OrderTypeStandard  OrderType = "standard"
	OrderTypeChristmas OrderType = "christmas"
)

// RecurrencePattern controls the spacing of a recurring series.
type RecurrencePattern string

const (
	RecurrenceWeekly      RecurrencePattern = "weekly"
	RecurrenceFortnightly RecurrencePattern = "fortnightly"
)

// IntervalDays returns the day gap between two series members, or 0 for unknown patterns.
func (p RecurrencePattern) IntervalDays() int {
	switch p {
	case RecurrenceWeekly:
		return 7
	case RecurrenceFortnightly:
		return 14
	default:
		return 0
	}
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          string  `json:"id" bson:"id"`
	Description string  `json:"description" bson:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
	Unit        string  `json:"unit" bson:"unit"`
}

// Order is a customer order for collection on a given date.
type Order struct {
	ID                string             `json:"id" bson:"id"`
	CustomerID        string             `json:"customerId" bson:"customer_id"`
	Items             []OrderItem        `json:"items" bson:"items"`
	CollectionDate    string             `json:"collectionDate" bson:"collection_date"`
	CollectionTime    string             `json:"collectionTime,omitempty" bson:"collection_time,omitempty"`
	Status            OrderStatus        `json:"status" bson:"status"`
	AdditionalNotes   string             `json:"additionalNotes,omitempty" bson:"additional_notes,omitempty"`
	OrderType         OrderType          `json:"orderType" bson:"order_type"`
	IsRecurring       bool               `json:"isRecurring" bson:"is_recurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern" bson:"recurrence_pattern"`
	RecurrenceEndDate string             `json:"recurrenceEndDate,omitempty" bson:"recurrence_end_date,omitempty"`
	ParentOrderID     *string            `json:"parentOrderId" bson:"parent_order_id"`
	CreatedAt         time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NewOrder is the payload accepted by the order repository when creating orders.
type NewOrder struct {
	CustomerID        string             `json:"customerId"`
	Items             []OrderItem        `json:"items"`
	CollectionDate    string             `json:"collectionDate"`
	CollectionTime    string             `json:"collectionTime"`
	Status            OrderStatus        `json:"status"`
	AdditionalNotes   string             `json:"additionalNotes"`
	OrderType         OrderType          `json:"orderType"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	RecurrenceEndDate string             `json:"recurrenceEndDate"`
}

// OrderUpdate is merged into an existing order; nil fields are left untouched.
type OrderUpdate struct {
	CustomerID      *string      `json:"customerId"`
	Items           *[]OrderItem `json:"items"`
	CollectionDate  *string      `json:"collectionDate"`
	CollectionTime  *string      `json:"collectionTime"`
	Status          *OrderStatus `json:"status"`
	AdditionalNotes *string      `json:"additionalNotes"`
	OrderType       *OrderType   `json:"orderType"`
}

// OrderStats summarises the order collection.
type OrderStats struct {
	Total          int                 `json:"total"`
	ByStatus       map[OrderStatus]int `json:"byStatus"`
	TodayCount     int                 `json:"today"`
	UpcomingCount  int                 `json:"upcoming"`
	ChristmasCount int                 `json:"christmas"`
	RecurringCount int                 `json:"recurring"`
}
