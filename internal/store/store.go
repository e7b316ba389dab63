// Package store holds the key-value persistence port used for all local
// coach state, with SQLite and in-memory implementations.
package store

import "errors"

// ErrUnavailable marks a failed read or write against the backing store.
var ErrUnavailable = errors.New("storage unavailable")

// KV is a string key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
