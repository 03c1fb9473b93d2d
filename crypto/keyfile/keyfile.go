/*
Package keyfile protects secret keys at rest with a password.

The password is stretched with argon2id into an AES-256 key. Sealed data
is a 16 byte random salt, the 12 byte GCM nonce, then the ciphertext and
the authentication tag. Additional authenticated data is optional and must be provided again
when opening.
*/
package keyfile

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/iov-one/lockfund/errors"
	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the length of the key derivation salt that starts every
	// sealed payload.
	SaltSize = 16
	// NonceSize is the length of the GCM nonce following the salt.
	NonceSize = 12

	headerSize = SaltSize + NonceSize
)

// argon2id cost parameters.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// ErrDecrypt is returned when sealed data cannot be opened, either because
// the password or the additional data is wrong or because the data was
// modified.
var ErrDecrypt = errors.Register(60, "cannot decrypt")

// PasswordKey derives the cipher key from a password and salt.
func PasswordKey(password, salt []byte) [32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey(password, salt, kdfTime, kdfMemory, kdfThreads, uint32(len(key))))
	return key
}

// Encrypt seals the secret with the password.
func Encrypt(secret, password, aad []byte) ([]byte, error) {
	return encrypt(rand.Reader, secret, password, aad)
}

func encrypt(random io.Reader, secret, password, aad []byte) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(random, header); err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "salt and nonce: %s", err)
	}
	aead, err := newAEAD(password, header[:SaltSize])
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerSize, headerSize+len(secret)+aead.Overhead())
	copy(out, header)
	return aead.Seal(out, header[SaltSize:], secret, aad), nil
}

// Decrypt opens data sealed by Encrypt.
func Decrypt(sealed, password, aad []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "password")
	}
	if len(sealed) < headerSize+gcmTagSize {
		return nil, errors.Wrapf(errors.ErrInput, "sealed data too short: %d", len(sealed))
	}
	aead, err := newAEAD(password, sealed[:SaltSize])
	if err != nil {
		return nil, err
	}
	secret, err := aead.Open(nil, sealed[SaltSize:headerSize], sealed[headerSize:], aad)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}
	return secret, nil
}

const gcmTagSize = 16

func newAEAD(password, salt []byte) (cipher.AEAD, error) {
	if len(password) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "password")
	}
	key := PasswordKey(password, salt)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return aead, nil
}
