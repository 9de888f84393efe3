package models

import "time"

// BackupType distinguishes staff-triggered snapshots from scheduled ones.
type BackupType string

const (
	BackupManual    BackupType = "manual"
	BackupAutomatic BackupType = "automatic"
)

// Snapshot is a full copy of customers and orders at one point in time.
type Snapshot struct {
	Customers []Customer `json:"customers"`
	Orders    []Order    `json:"orders"`
	Timestamp time.Time  `json:"timestamp"`
	Version   string     `json:"version"`
}

// BackupInfo describes a stored snapshot without its payload.
type BackupInfo struct {
	ID            string     `json:"id"`
	Type          BackupType `json:"type"`
	Timestamp     time.Time  `json:"timestamp"`
	CustomerCount int        `json:"customerCount"`
	OrderCount    int        `json:"orderCount"`
}
