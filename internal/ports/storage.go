package ports

import (
	"context"
	"errors"
)

// Keys held in a client's storage namespace.
const (
	StorageKeyAccessToken  = "accessToken"
	StorageKeyRefreshToken = "refreshToken"
	StorageKeyCurrentUser  = "currentUser"
)

// SessionKeys lists every key written on sign-in and removed on sign-out.
func SessionKeys() []string {
	return []string{StorageKeyAccessToken, StorageKeyRefreshToken, StorageKeyCurrentUser}
}

// ErrStorageKeyNotFound is returned by Storage.Get for absent keys.
var ErrStorageKeyNotFound = errors.New("storage key not found")

// Storage is one client's durable key-value namespace.
type Storage interface {
	// Get returns the value for key or ErrStorageKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Replace atomically overwrites the whole namespace with entries.
	// Keys not present in entries are removed.
	Replace(ctx context.Context, entries map[string]string) error

	// Clear removes every key in the namespace. Clearing an empty namespace is not an error.
	Clear(ctx context.Context) error
}

// StorageProvider opens the namespace for a client.
type StorageProvider interface {
	Open(clientID string) Storage
}
