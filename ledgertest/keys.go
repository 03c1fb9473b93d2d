package ledgertest

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
)

var keyCounter uint64

// NewKey returns a new private key. Keys are derived from a process wide
// counter so that test runs are reproducible.
func NewKey() solana.PrivateKey {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], atomic.AddUint64(&keyCounter, 1))
	return KeyFromSeed(string(seed[:]))
}

// KeyFromSeed returns the private key derived from the given seed phrase.
// The same phrase always produces the same key.
func KeyFromSeed(phrase string) solana.PrivateKey {
	seed := sha256.Sum256([]byte("ledgertest:" + phrase))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
}

// NewPublicKey returns the public key of a fresh private key.
func NewPublicKey() solana.PublicKey {
	return NewKey().PublicKey()
}
