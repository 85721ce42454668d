// Package credman stores provider accounts in an encrypted vault file.
// The whole vault is gob-encoded and sealed with AES-GCM; the 32-byte
// vault key lives in the OS keyring, with a file-based fallback for
// headless machines (optionally protected by a passphrase-derived
// key).
package credman

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cjliu20152/qiskit/pkg/credman/encryption"
	"github.com/cjliu20152/qiskit/pkg/credman/types"
)

// DefaultAccountKey names the vault entry used when no account is
// selected explicitly.
const DefaultAccountKey = "default"

// vault is the on-disk shape, encrypted as one blob.
type vault struct {
	Accounts map[string]*types.Account
	// Selected is the account name used when the caller passes "".
	Selected string
}

// AccountManager loads, edits and persists the vault file.
type AccountManager struct {
	filePath string
	key      []byte
	v        vault
}

// NewAccountManager opens (or creates) the vault at filePath using the
// given 32-byte key.
func NewAccountManager(filePath string, key []byte) (*AccountManager, error) {
	am := &AccountManager{
		filePath: filePath,
		key:      key,
		v: vault{
			Accounts: make(map[string]*types.Account),
		},
	}
	if err := am.load(); err != nil {
		return nil, err
	}
	return am, nil
}

// load reads and decrypts the vault. A missing or empty file yields an
// empty vault.
func (am *AccountManager) load() error {
	data, err := os.ReadFile(am.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read vault: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	plain, err := encryption.Decrypt(data, am.key)
	if err != nil {
		return fmt.Errorf("unlock vault: %w", err)
	}
	dec := gob.NewDecoder(bytes.NewReader(plain))
	if err := dec.Decode(&am.v); err != nil {
		return fmt.Errorf("decode vault: %w", err)
	}
	if am.v.Accounts == nil {
		am.v.Accounts = make(map[string]*types.Account)
	}
	return nil
}

// save encrypts and atomically rewrites the vault file.
func (am *AccountManager) save() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&am.v); err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	sealed, err := encryption.Encrypt(buf.Bytes(), am.key)
	if err != nil {
		return fmt.Errorf("seal vault: %w", err)
	}
	dir := filepath.Dir(am.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".vault-*")
	if err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write vault: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write vault: %w", err)
	}
	if err := os.Rename(tmpName, am.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}

// SetAccount stores or replaces an account. The first account saved
// becomes the selected one.
func (am *AccountManager) SetAccount(account types.Account) error {
	if !account.Valid() {
		return ErrIncompleteAccount
	}
	if account.AddedAt.IsZero() {
		account.AddedAt = time.Now()
	}
	am.v.Accounts[account.Name] = &account
	if am.v.Selected == "" {
		am.v.Selected = account.Name
	}
	return am.save()
}

// GetAccount resolves an account by name. An empty name resolves the
// selected account.
func (am *AccountManager) GetAccount(name string) (*types.Account, error) {
	if name == "" {
		name = am.v.Selected
	}
	if name == "" {
		return nil, ErrNoAccounts
	}
	account, ok := am.v.Accounts[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrAccountNotFound)
	}
	out := *account
	return &out, nil
}

// DeleteAccount removes an account. Deleting the selected account
// clears the selection.
func (am *AccountManager) DeleteAccount(name string) error {
	if _, ok := am.v.Accounts[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrAccountNotFound)
	}
	delete(am.v.Accounts, name)
	if am.v.Selected == name {
		am.v.Selected = ""
		// Fall back to any remaining account, smallest name first so
		// the pick is stable.
		names := am.names()
		if len(names) > 0 {
			am.v.Selected = names[0]
		}
	}
	return am.save()
}

// Select marks an account as the one "" resolves to.
func (am *AccountManager) Select(name string) error {
	if _, ok := am.v.Accounts[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrAccountNotFound)
	}
	am.v.Selected = name
	return am.save()
}

// Selected returns the name of the selected account, empty when the
// vault is empty.
func (am *AccountManager) Selected() string { return am.v.Selected }

// Accounts lists every stored account ordered by name.
func (am *AccountManager) Accounts() []*types.Account {
	out := make([]*types.Account, 0, len(am.v.Accounts))
	for _, name := range am.names() {
		account := *am.v.Accounts[name]
		out = append(out, &account)
	}
	return out
}

func (am *AccountManager) names() []string {
	names := make([]string, 0, len(am.v.Accounts))
	for name := range am.v.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
