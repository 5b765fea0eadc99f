// Package confirm encrypts staged-deployment identifiers into URL-safe
// confirmation tokens.
//
// Token layout: base64url( salt[16] || iterations[4, big-endian] ||
// base64url(ciphertext) ), where the ciphertext is AES-256-GCM with the
// nonce prepended and the key is PBKDF2-SHA256(passphrase, salt, iterations).
// Tokens carry no expiry.
package confirm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32
)

var (
	// ErrMalformedToken reports structurally invalid tokens (bad encoding
	// or truncated framing).
	ErrMalformedToken = errors.New("malformed confirmation token")
	// ErrDecryptFailed reports an authentication failure of the cipher,
	// typically a wrong passphrase.
	ErrDecryptFailed = errors.New("confirmation token decryption failed")
)

// Codec seals and opens confirmation tokens with a shared passphrase.
type Codec struct {
	passphrase []byte
	iterations int
}

// NewCodec builds a codec. The iteration count is baked into every issued
// token so it can be raised without invalidating outstanding links.
func NewCodec(passphrase string, iterations int) (*Codec, error) {
	if passphrase == "" {
		return nil, errors.New("confirm: passphrase must not be empty")
	}
	if iterations <= 0 {
		return nil, errors.New("confirm: iterations must be positive")
	}
	return &Codec{passphrase: []byte(passphrase), iterations: iterations}, nil
}

// Encrypt seals the identifier into a URL-safe token.
func (c *Codec) Encrypt(id string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("confirm: generate salt: %w", err)
	}

	aead, err := c.aead(salt, c.iterations)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("confirm: generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nonce, nonce, []byte(id), nil)
	inner := base64.RawURLEncoding.EncodeToString(ciphertext)

	payload := make([]byte, 0, saltSize+4+len(inner))
	payload = append(payload, salt...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(c.iterations))
	payload = append(payload, inner...)

	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decrypt opens a token and returns the embedded identifier. Malformed
// tokens and wrong-passphrase failures are distinguishable via errors.Is.
func (c *Codec) Decrypt(token string) (string, error) {
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(payload) < saltSize+4 {
		return "", fmt.Errorf("%w: truncated payload", ErrMalformedToken)
	}

	salt := payload[:saltSize]
	iterations := int(binary.BigEndian.Uint32(payload[saltSize : saltSize+4]))
	if iterations <= 0 {
		return "", fmt.Errorf("%w: invalid iteration count", ErrMalformedToken)
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(string(payload[saltSize+4:]))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	aead, err := c.aead(salt, iterations)
	if err != nil {
		return "", err
	}
	if len(ciphertext) < aead.NonceSize() {
		return "", fmt.Errorf("%w: short ciphertext", ErrMalformedToken)
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

func (c *Codec) aead(salt []byte, iterations int) (cipher.AEAD, error) {
	key := pbkdf2.Key(c.passphrase, salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("confirm: init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
