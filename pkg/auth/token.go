// Package auth resolves the optional bearer token used against the hub.
//
// Tokens are looked up in order: explicit configuration, the HF_TOKEN
// environment variable, then the system keyring. A missing token is not
// an error — most metadata endpoints are public.
package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "hfharvest"
	keyringKey     = "hub_token"
)

// ErrTokenNotFound indicates no token is stored in the queried store
var ErrTokenNotFound = errors.New("token not found")

// ErrStoreUnavailable indicates the store cannot hold tokens
var ErrStoreUnavailable = errors.New("token store unavailable")

// TokenStore abstracts where the bearer token lives
type TokenStore interface {
	// Retrieve returns the stored token, or ErrTokenNotFound
	Retrieve() (string, error)
	// Store saves a token, or ErrStoreUnavailable for read-only stores
	Store(token string) error
	// Delete removes the stored token
	Delete() error
}

// EnvironmentStore reads the token from the HF_TOKEN environment variable
type EnvironmentStore struct{}

// Retrieve gets the token from the environment
func (EnvironmentStore) Retrieve() (string, error) {
	token := os.Getenv("HF_TOKEN")
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Store is not supported for environment variables
func (EnvironmentStore) Store(token string) error { return ErrStoreUnavailable }

// Delete is not supported for environment variables
func (EnvironmentStore) Delete() error { return ErrStoreUnavailable }

// KeyringStore keeps the token in the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed store, verifying the keyring
// is usable on this system
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Retrieve gets the token from the keychain
func (*KeyringStore) Retrieve() (string, error) {
	token, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return token, nil
}

// Store saves the token to the keychain
func (*KeyringStore) Store(token string) error {
	if token == "" {
		return errors.New("token is empty")
	}
	if err := keyring.Set(keyringService, keyringKey, token); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Delete removes the token from the keychain
func (*KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Resolve returns the first token found: the explicit one when non-empty,
// then the environment, then the keyring. Returns "" when none is
// available.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if token, err := (EnvironmentStore{}).Retrieve(); err == nil {
		return token
	}

	if store, err := NewKeyringStore(); err == nil {
		if token, err := store.Retrieve(); err == nil {
			return token
		}
	}

	return ""
}
