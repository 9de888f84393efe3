package models

import "time"

// StaffNote is an internal remark attached to an order.
type StaffNote struct {
	ID        string    `json:"id" bson:"id"`
	OrderID   string    `json:"orderId" bson:"order_id"`
	StaffName string    `json:"staffName" bson:"staff_name"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Content   string    `json:"content" bson:"content"`
}
