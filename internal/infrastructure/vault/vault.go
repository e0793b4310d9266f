package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
)

const (
	keySize   = 32
	nonceSize = 12
	tagSize   = 16
)

// Vault seals secrets into "hex(nonce):hex(tag):hex(ciphertext)" tokens
// with AES-256-GCM under a single process-wide key.
type Vault struct {
	aead           cipher.AEAD
	allowPlaintext bool
	logger         *slog.Logger
}

type Option func(*Vault)

// WithPlaintextLegacy makes Open return values that are not sealed tokens
// unchanged. Rows written before encryption was introduced rely on it.
func WithPlaintextLegacy(logger *slog.Logger) Option {
	return func(v *Vault) {
		v.allowPlaintext = true
		if logger != nil {
			v.logger = logger
		}
	}
}

// New builds a Vault from a 64 character hex key.
func New(hexKey string, opts ...Option) (*Vault, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return NewFromKey(key, opts...)
}

func NewFromKey(key []byte, opts ...Option) (*Vault, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}
	v := &Vault{aead: aead, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Seal encrypts plaintext with a fresh random nonce. Empty input stays empty.
func (v *Vault) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// SealIfNeeded leaves already sealed tokens untouched.
func (v *Vault) SealIfNeeded(value string) (string, error) {
	if value == "" || IsSealed(value) {
		return value, nil
	}
	return v.Seal(value)
}

// Open decrypts a token produced by Seal. A wrong key, a corrupted part or a
// malformed token yields domain.ErrDecryptionFailed.
func (v *Vault) Open(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	nonce, tag, ct, ok := split(token)
	if !ok {
		if v.allowPlaintext {
			v.logger.Warn("vault: returning unsealed legacy value")
			return token, nil
		}
		return "", fmt.Errorf("%w: malformed token", domain.ErrDecryptionFailed)
	}
	plaintext, err := v.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether value has the shape of a vault token.
func IsSealed(value string) bool {
	_, _, _, ok := split(value)
	return ok
}

func split(token string) (nonce, tag, ct []byte, ok bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return nil, nil, nil, false
	}
	var err error
	if nonce, err = hex.DecodeString(parts[0]); err != nil || len(nonce) != nonceSize {
		return nil, nil, nil, false
	}
	if tag, err = hex.DecodeString(parts[1]); err != nil || len(tag) != tagSize {
		return nil, nil, nil, false
	}
	if ct, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, false
	}
	return nonce, tag, ct, true
}
