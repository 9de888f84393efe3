package schedule

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// NameLookup resolves customer display names.
type NameLookup interface {
	CustomerName(id string) string
}

// Row is one collection on the printed schedule.
type Row struct {
	OrderID        string             `json:"orderId"`
	CustomerName   string             `json:"customerName"`
	CollectionTime string             `json:"collectionTime"`
	Status         models.OrderStatus `json:"status"`
	Christmas      bool               `json:"christmas"`
	Items          []string           `json:"items"`
	Notes          string             `json:"notes,omitempty"`
}

// Schedule is the day's collection list.
type Schedule struct {
	Date string `json:"date"`
	Rows []Row  `json:"rows"`
}

// Build selects the orders collected on date, drops cancelled ones and sorts by
// collection time then customer name. Orders without a time go last.
func Build(date string, orders []models.Order, names NameLookup) Schedule {
	rows := make([]Row, 0)
	for _, o := range orders {
		if o.CollectionDate != date || o.Status == models.StatusCancelled {
			continue
		}
		name := models.UnknownCustomerName
		if names != nil {
			name = names.CustomerName(o.CustomerID)
		}
		rows = append(rows, Row{
			OrderID:        o.ID,
			CustomerName:   name,
			CollectionTime: o.CollectionTime,
			Status:         o.Status,
			Christmas:      o.OrderType == models.OrderTypeChristmas,
			Items:          itemLines(o.Items),
			Notes:          o.AdditionalNotes,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := rows[i].CollectionTime, rows[j].CollectionTime
		if ti != tj {
			if ti == "" {
				return false
			}
			if tj == "" {
				return true
			}
			return ti < tj
		}
		return strings.ToLower(rows[i].CustomerName) < strings.ToLower(rows[j].CustomerName)
	})

	return Schedule{Date: date, Rows: rows}
}

func itemLines(items []models.OrderItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		if item.Unit != "" {
			qty += " " + item.Unit
		}
		lines = append(lines, qty+" x "+item.Description)
	}
	return lines
}
