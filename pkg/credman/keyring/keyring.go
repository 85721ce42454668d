// Package keyring resolves the 32-byte vault key. The primary store is
// the operating system keyring; headless machines fall back to a
// passphrase-derived key (QISKIT_VAULT_PASSPHRASE) or a key file in the
// config directory.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeySize is the AES-256 vault key length.
	KeySize = 32

	defaultAppName  = "qiskit"
	defaultKeyField = "vault"
)

// Stubbed in tests.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// Keyring stores the vault key in the OS keyring service.
type Keyring struct {
	AppName  string
	KeyField string
}

// NewKeyring returns a keyring bound to the qiskit service entry.
func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  defaultAppName,
		KeyField: defaultKeyField,
	}
}

// SetKey generates a fresh random key, stores it hex-encoded and
// returns the raw bytes.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey fetches and decodes the stored key.
func (k *Keyring) GetKey() ([]byte, error) {
	value, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("stored key is not hex: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("stored key has %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

// DeleteKey removes the stored key.
func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}
