package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys under which each collection is persisted.
const (
	KeyCustomers      = "customers"
	KeyOrders         = "orders"
	KeyOrderSequence  = "orderSequence"
	KeyStaffNotes     = "staffNotes"
	KeyEmailTemplates = "emailTemplates"
	KeyBackups        = "backups"
	KeyProductsCache  = "christmasProducts"
	KeyProductsExpiry = "christmasProductsExpiry"
	KeyErrorLogs      = "errorLogs"
	KeyAuthenticated  = "isAuthenticated"
)

// ErrCorrupt indicates a stored value could not be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// KV is a flat key to JSON-string store. Implementations hold whole collections per key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into dst. It reports false when the key is absent.
func LoadJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
