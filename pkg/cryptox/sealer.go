package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// sealKeySize is the AES-256 key length derived for every Sealer.
const sealKeySize = 32

// ErrCiphertextTooShort is returned by Open when the input cannot even hold a nonce.
var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// Sealer encrypts small secrets (tokens, cookie values) before they are
// written to local storage. Output format is [nonce][ciphertext+tag] using
// AES-256-GCM, so every Seal call produces a different ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256 key from the master secret with HKDF-SHA256.
// The info string binds the key to one purpose so the same master secret can
// safely back several sealers (e.g. "credentials" and "cookies").
func NewSealer(master []byte, info string) (*Sealer, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("cryptox: empty master secret")
	}

	key := make([]byte, sealKeySize)
	kdf := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: gcm}, nil
}

// Seal encrypts and authenticates plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// SealString is a convenience wrapper around Seal for string secrets.
func (s *Sealer) SealString(plaintext string) ([]byte, error) {
	return s.Seal([]byte(plaintext))
}

// OpenString is a convenience wrapper around Open for string secrets.
func (s *Sealer) OpenString(sealed []byte) (string, error) {
	plaintext, err := s.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// LoadMasterKey resolves the master secret used to derive sealers:
//  1. the explicit value, when non-empty (MASTER_KEY)
//  2. the contents of path, when the file exists
//  3. a freshly generated TokenSize512 secret written to path with 0600 perms
//
// Persisting the generated secret keeps locally stored credentials readable
// across process restarts, which a per-process random key would not.
func LoadMasterKey(explicit, path string) ([]byte, error) {
	if explicit != "" {
		return []byte(explicit), nil
	}
	if path == "" {
		return nil, fmt.Errorf("cryptox: no master key and no key file configured")
	}

	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key == "" {
			return nil, fmt.Errorf("cryptox: master key file %s is empty", path)
		}
		return []byte(key), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read master key file: %w", err)
	}

	key, err := GenerateToken(TokenSize512)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write master key file: %w", err)
	}

	return []byte(key), nil
}
