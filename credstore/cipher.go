package credstore

import (
	"crypto/rand"
	"io"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// ErrSealBroken is returned when a sealed token cannot be opened, usually
// because the secret changed or the row was tampered with.
var ErrSealBroken = goerrors.New("failed to open sealed credential", goerrors.CategoryOperation).
	WithTextCode("credstore_seal_broken")

// cipher seals tokens with a secretbox keyed by scrypt(secret, salt). A
// fresh salt and nonce are drawn per seal, both stored in the box prefix.
type cipher struct {
	secret string
}

func newCipher(secret string) *cipher {
	return &cipher{secret: secret}
}

func (c *cipher) seal(token string) ([]byte, error) {
	var salt [saltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to draw salt")
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to draw nonce")
	}

	key, err := c.deriveKey(salt[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(token)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, []byte(token), &nonce, key), nil
}

func (c *cipher) open(sealed []byte) (string, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return "", ErrSealBroken
	}

	var salt [saltSize]byte
	copy(salt[:], sealed[:saltSize])

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	key, err := c.deriveKey(salt[:])
	if err != nil {
		return "", err
	}

	opened, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return "", ErrSealBroken
	}
	return string(opened), nil
}

func (c *cipher) deriveKey(salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key([]byte(c.secret), salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to derive sealing key")
	}

	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}
