// Package secret encrypts provider credentials before they reach
// storage. Plaintext tokens never persist.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Cipher seals and opens credential strings with AES-GCM under one
// process-wide key. The zero-length string passes through unchanged in
// both directions: an absent credential stays absent.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a raw AES key (16/24/32 bytes).
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals one credential and returns a base64-encoded payload.
// Encrypting the empty string returns the empty string.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if c == nil || c.aead == nil {
		return "", fmt.Errorf("cipher is not configured")
	}

	// GCM requires a unique nonce per encryption under the same key.
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	// Stored as nonce || ciphertext in raw base64.
	payload := append(nonce, sealed...)
	return base64.RawStdEncoding.EncodeToString(payload), nil
}

// Decrypt opens one previously encrypted credential. Decrypting the
// empty string returns the empty string. A malformed or tampered
// payload returns ("", error); callers must treat an unexpectedly empty
// result as an unreadable credential, not a valid token.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if c == nil || c.aead == nil {
		return "", fmt.Errorf("cipher is not configured")
	}

	payload, err := base64.RawStdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", fmt.Errorf("credential payload too short")
	}
	nonce := payload[:nonceSize]
	sealed := payload[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	return string(plaintext), nil
}
