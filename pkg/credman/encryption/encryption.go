// Package encryption seals vault blobs with AES-256-GCM. Sealed blobs
// carry a format prefix so the layout can evolve without breaking old
// vault files.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// gcmPrefix tags the current sealed format.
const gcmPrefix = "qv1"

var (
	ErrTooShort     = errors.New("sealed blob too short")
	ErrBadFormat    = errors.New("unknown sealed format")
	ErrWrongKeySize = errors.New("key must be 32 bytes")
)

// Encrypt seals plaintext under key. Layout: prefix || nonce || ciphertext.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(sealed))
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens a blob produced by Encrypt.
func Decrypt(blob, key []byte) ([]byte, error) {
	if len(blob) < len(gcmPrefix) {
		return nil, ErrTooShort
	}
	if string(blob[:len(gcmPrefix)]) != gcmPrefix {
		return nil, ErrBadFormat
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	rest := blob[len(gcmPrefix):]
	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return nil, ErrTooShort
	}
	plain, err := gcm.Open(nil, rest[:nonceSize], rest[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed blob: %w", err)
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, ErrWrongKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
