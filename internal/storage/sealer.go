// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// AT-REST ENCRYPTION
// =============================================================================

// Slot payload format when sealed: magic || salt || nonce || ciphertext.
// AES-256-GCM authenticated encryption with a PBKDF2-SHA-256 derived key.

const (
	// sealMagic marks a slot file as encrypted.
	sealMagic = "HVN1"

	// keySize is the AES-256 key size (32 bytes).
	keySize = 32

	// saltSize is the PBKDF2 salt size.
	saltSize = 16

	// nonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
	nonceSize = 12

	// pbkdf2Iterations follows the OWASP 2023 recommendation for
	// PBKDF2-SHA-256.
	pbkdf2Iterations = 600000
)

var (
	// ErrSealedSlot indicates an encrypted slot was read without a sealer.
	ErrSealedSlot = errors.New("slot is encrypted: passphrase required")

	// ErrBadPassphrase indicates decryption failed (wrong passphrase or
	// tampered data).
	ErrBadPassphrase = errors.New("decryption failed: wrong passphrase or corrupted data")
)

// Sealer encrypts and decrypts slot payloads with a passphrase-derived key.
type Sealer struct {
	passphrase string
}

// NewSealer creates a sealer for the given passphrase.
func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: passphrase}
}

// deriveKey derives the AES key from the passphrase and a per-file salt.
func (s *Sealer) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(s.passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

// Seal encrypts a plaintext payload.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// Open decrypts a sealed payload. Plaintext payloads (no magic) pass through
// unchanged so enabling encryption later does not orphan existing slots.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}

	body := data[len(sealMagic):]
	if len(body) < saltSize+nonceSize {
		return nil, ErrBadPassphrase
	}
	salt := body[:saltSize]
	nonce := body[saltSize : saltSize+nonceSize]
	ciphertext := body[saltSize+nonceSize:]

	block, err := aes.NewCipher(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plaintext, nil
}

// IsSealed reports whether a slot payload is encrypted.
func IsSealed(data []byte) bool {
	return len(data) >= len(sealMagic) && string(data[:len(sealMagic)]) == sealMagic
}
