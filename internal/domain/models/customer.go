package models

import (
	"strings"
	"time"
)

// UnknownCustomerName is rendered when an order points at a customer that no longer exists.
const UnknownCustomerName = "Unknown Customer"

// Customer is a shop customer record.
type Customer struct {
	ID        string    `json:"id" bson:"id"`
	FirstName string    `json:"firstName" bson:"first_name"`
	LastName  string    `json:"lastName" bson:"last_name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Company   string    `json:"company,omitempty" bson:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerInput carries the editable customer fields.
type CustomerInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// CustomerUpdate is a partial update; nil fields are left untouched.
type CustomerUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
}
