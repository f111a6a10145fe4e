// Package cryptox seals small secrets (stored bearer tokens) at rest.
//
// A 32-byte AES key is derived from a local secret and a salt with
// argon2id; values are sealed with AES-GCM and stored as nonce||ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/juizlab/internal/common"
	"golang.org/x/crypto/argon2"
)

const keySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// Sealer encrypts and decrypts values with a fixed AES-GCM key.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerFromKeyFile reads a secret from path and derives the sealing key
// with the given salt. Surrounding whitespace in the file is ignored.
func NewSealerFromKeyFile(path string, salt []byte) (*Sealer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	secret := []byte(strings.TrimSpace(string(data)))
	defer common.WipeByteArray(secret)
	if len(secret) == 0 {
		return nil, fmt.Errorf("key file %s is empty", path)
	}

	key := DeriveKey(secret, salt)
	defer common.WipeByteArray(key)
	return NewSealer(key)
}

// Seal returns nonce||ciphertext for plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return plaintext, nil
}
