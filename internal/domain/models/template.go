package models

import "time"

// EmailTemplate is a staff-editable customer message.
type EmailTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RenderedMessage is a template filled in for one customer.
type RenderedMessage struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	MailtoURL string `json:"mailtoUrl"`
}

// ErrorLogEntry is one recorded failure.
type ErrorLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
}
