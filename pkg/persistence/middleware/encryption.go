package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/propschema/pkg/ports"
)

// ErrKeySize is returned for keys that are not 32 bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into an EncryptionConfig. The first key is the
// active one.
func ParseKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := parseKey(active)
	if err != nil {
		return cfg, err
	}
	cfg.ActiveKey = key
	for _, f := range fallbacks {
		key, err := parseKey(f)
		if err != nil {
			return cfg, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

func parseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

// envelope is what the wrapped store sees instead of the document.
type envelope struct {
	Encrypted string `json:"__encrypted__"`
}

type encryptionMiddleware struct {
	next   ports.CatalogStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts documents using
// AES-GCM before they reach the wrapped store.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	return func(next ports.CatalogStore) ports.CatalogStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, key string, doc []byte) error {
	ciphertext, err := encrypt(doc, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt document: %w", err)
	}

	sealed, err := json.Marshal(envelope{Encrypted: base64.StdEncoding.EncodeToString(ciphertext)})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return m.next.Save(ctx, key, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	// A store configured for encryption only accepts envelopes.
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Encrypted == "" {
		return nil, errors.New("document is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt document: %w", err)
	}
	return plainText, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
