package client

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
	"github.com/mr-tron/base58"
)

// LoadKey reads a private key file. Both the Solana keygen format (a JSON
// array of 64 numbers) and a base58 encoded secret key are accepted.
func LoadKey(path string) (solana.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read key file: %s", err)
	}
	key, err := ParseKey(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "key file %s", path)
	}
	return key, nil
}

// ParseKey decodes the content of a key file.
func ParseKey(raw []byte) (solana.PrivateKey, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "key")
	}

	var secret []byte
	if raw[0] == '[' {
		var err error
		if secret, err = DecodeByteArray(raw); err != nil {
			return nil, err
		}
	} else {
		var err error
		if secret, err = base58.Decode(string(raw)); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "base58: %s", err)
		}
	}

	return KeyFromSecret(secret)
}

// KeyFromSecret validates a raw 64 byte secret key, the seed followed by
// the public key.
func KeyFromSecret(secret []byte) (solana.PrivateKey, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "secret key has %d bytes, want %d", len(secret), ed25519.PrivateKeySize)
	}
	derived := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(derived, secret) {
		return nil, errors.Wrap(errors.ErrInput, "public key does not match the seed")
	}
	return solana.PrivateKey(append([]byte(nil), secret...)), nil
}

// WriteKey stores the key in the Solana keygen format. Existing files are
// never overwritten.
func WriteKey(path string, key solana.PrivateKey) error {
	raw := EncodeByteArray(key)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "create key file: %s", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return errors.Wrapf(errors.ErrInput, "write key file: %s", err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(errors.ErrInput, "close key file: %s", err)
	}
	return nil
}

// EncodeByteArray returns b as a JSON array of numbers, the format used by
// Solana key files.
func EncodeByteArray(b []byte) []byte {
	numbers := make([]int, len(b))
	for i, v := range b {
		numbers[i] = int(v)
	}
	// A slice of integers always serializes.
	raw, _ := json.Marshal(numbers)
	return raw
}

// DecodeByteArray is the reverse of EncodeByteArray.
func DecodeByteArray(raw []byte) ([]byte, error) {
	var numbers []int
	if err := json.Unmarshal(raw, &numbers); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "byte array: %s", err)
	}
	b := make([]byte, len(numbers))
	for i, n := range numbers {
		if n < 0 || n > 255 {
			return nil, errors.Wrapf(errors.ErrInput, "byte %d out of range: %d", i, n)
		}
		b[i] = byte(n)
	}
	return b, nil
}
