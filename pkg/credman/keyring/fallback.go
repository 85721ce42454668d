package keyring

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

const (
	keyFileName = "vault.key"

	// PassphraseEnv supplies a vault passphrase on machines without a
	// keyring service. The key is derived, never stored.
	PassphraseEnv = "QISKIT_VAULT_PASSPHRASE"
)

// scrypt parameters; interactive-login cost.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// KeyStore is the shape shared by the OS keyring, the passphrase
// derivation and the plain file fallback.
type KeyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// Resolve picks the first usable key store: passphrase env when set,
// then the OS keyring, then the key file under configDir.
func Resolve(configDir string) KeyStore {
	if os.Getenv(PassphraseEnv) != "" {
		return &PassphraseKeyStore{configDir: configDir}
	}
	kr := NewKeyring()
	if _, err := kr.GetKey(); err == nil {
		return kr
	}
	// Probe whether the keyring service works at all before
	// committing to it.
	if _, err := kr.SetKey(); err == nil {
		_ = kr.DeleteKey()
		return kr
	}
	return NewFileKeyStore(configDir)
}

// LoadOrCreate returns the vault key from store, generating one on
// first use.
func LoadOrCreate(store KeyStore) ([]byte, error) {
	if key, err := store.GetKey(); err == nil {
		return key, nil
	}
	return store.SetKey()
}

// PassphraseKeyStore derives the vault key from a passphrase with
// scrypt. The salt is persisted next to the vault so the derivation is
// stable across runs.
type PassphraseKeyStore struct {
	configDir string
}

func (p *PassphraseKeyStore) saltPath() string {
	return filepath.Join(p.configDir, "vault.salt")
}

func (p *PassphraseKeyStore) salt() ([]byte, error) {
	if salt, err := os.ReadFile(p.saltPath()); err == nil && len(salt) == KeySize {
		return salt, nil
	}
	salt := make([]byte, KeySize)
	if _, err := randRead(salt); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.configDir, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p.saltPath(), salt, 0600); err != nil {
		return nil, err
	}
	return salt, nil
}

func (p *PassphraseKeyStore) derive() ([]byte, error) {
	pass := os.Getenv(PassphraseEnv)
	if pass == "" {
		return nil, fmt.Errorf("%s is not set", PassphraseEnv)
	}
	salt, err := p.salt()
	if err != nil {
		return nil, fmt.Errorf("vault salt: %w", err)
	}
	key, err := scrypt.Key([]byte(pass), salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	return key, nil
}

// SetKey derives the key; nothing is generated or stored beyond the
// salt.
func (p *PassphraseKeyStore) SetKey() ([]byte, error) { return p.derive() }

// GetKey derives the key.
func (p *PassphraseKeyStore) GetKey() ([]byte, error) { return p.derive() }

// DeleteKey drops the salt, invalidating the derived key.
func (p *PassphraseKeyStore) DeleteKey() error {
	return os.Remove(p.saltPath())
}

// FileKeyStore keeps the raw key in a 0600 file under the config
// directory. Last resort, but better than plaintext tokens.
type FileKeyStore struct {
	configDir string
}

// NewFileKeyStore stores the key file under configDir.
func NewFileKeyStore(configDir string) *FileKeyStore {
	return &FileKeyStore{configDir: configDir}
}

func (f *FileKeyStore) keyPath() string {
	return filepath.Join(f.configDir, keyFileName)
}

// SetKey generates a new key and writes it atomically.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := os.MkdirAll(f.configDir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	tmp, err := os.CreateTemp(f.configDir, ".key-*")
	if err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(key); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := os.Rename(tmpName, f.keyPath()); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

// GetKey reads the stored key.
func (f *FileKeyStore) GetKey() ([]byte, error) {
	key, err := os.ReadFile(f.keyPath())
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key file has %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

// DeleteKey removes the key file.
func (f *FileKeyStore) DeleteKey() error {
	return os.Remove(f.keyPath())
}
