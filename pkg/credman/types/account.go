// Package types defines the account records held by the credential
// vault.
package types

import "time"

// Account is one saved provider credential. Token is stored encrypted
// on disk; the manager decrypts it on read.
type Account struct {
	// Name is the vault key, e.g. "default" or "staging".
	Name string
	// URL is the provider API endpoint.
	URL string
	// Token is the bearer credential.
	Token string
	// AddedAt records when the account was first saved.
	AddedAt time.Time
}

// Valid reports whether the account carries the fields a provider
// client needs.
func (a *Account) Valid() bool {
	return a != nil && a.Name != "" && a.URL != "" && a.Token != ""
}
