// Package secrets stores small sensitive blobs, such as a developer's ~/.env,
// in the operating system keychain instead of cloud storage.
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName identifies devws entries in the system keychain
const ServiceName = "devws"

// ErrNotFound is returned when no secret exists under the requested name
var ErrNotFound = errors.New("secret not found")

// Store persists named secrets
type Store interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
}

// Keyring is the system-keychain implementation of Store
type Keyring struct{}

// NewKeyring returns a Store backed by the operating system keychain
func NewKeyring() *Keyring {
	return &Keyring{}
}

func (k *Keyring) Put(name string, data []byte) error {
	if err := keyring.Set(ServiceName, name, string(data)); err != nil {
		return fmt.Errorf("storing secret %s: %w", name, err)
	}
	return nil
}

func (k *Keyring) Get(name string) ([]byte, error) {
	value, err := keyring.Get(ServiceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading secret %s: %w", name, err)
	}
	return []byte(value), nil
}
