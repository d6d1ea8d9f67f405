// Package store provides the key-value stores backing session state and
// durable history: an embedded BadgerDB store that survives restarts and an
// in-memory store scoped to one server process.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal durable key-value surface
type Store interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and unmarshals it into out. Absent or malformed values
// fail open: out is left untouched and ok is false. Only infrastructure
// failures (a broken store, a cancelled context) are reported as errors.
func GetJSON(ctx context.Context, s Store, key string, out any) (ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if json.Unmarshal(raw, out) != nil {
		// Corrupt value, treat as absent
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// AppendJSONList reads the JSON array stored under key, appends v, and writes
// the array back. A missing or corrupt value starts a fresh list.
func AppendJSONList[T any](ctx context.Context, s Store, key string, v T) error {
	var list []T
	if _, err := GetJSON(ctx, s, key, &list); err != nil {
		return err
	}
	list = append(list, v)
	return SetJSON(ctx, s, key, list)
}

// ReadJSONList returns the JSON array stored under key, or an empty list when
// the key is absent or corrupt.
func ReadJSONList[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var list []T
	if _, err := GetJSON(ctx, s, key, &list); err != nil {
		return nil, err
	}
	return list, nil
}
