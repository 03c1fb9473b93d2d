package x

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetSigners reveals all keys that authorized the current
	// instruction.
	GetSigners(lockfund.Context) []solana.PublicKey
	// HasSigner checks if the given key authorized the current
	// instruction.
	HasSigner(lockfund.Context, solana.PublicKey) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetSigners combines all signers from all Authenticators, without
// duplicates.
func (m MultiAuth) GetSigners(ctx lockfund.Context) []solana.PublicKey {
	var res []solana.PublicKey
	seen := make(map[solana.PublicKey]struct{})
	for _, impl := range m.impls {
		for _, s := range impl.GetSigners(ctx) {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			res = append(res, s)
		}
	}
	return res
}

// HasSigner returns true iff any Authenticator support this
func (m MultiAuth) HasSigner(ctx lockfund.Context, key solana.PublicKey) bool {
	for _, impl := range m.impls {
		if impl.HasSigner(ctx, key) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise a zero key
func MainSigner(ctx lockfund.Context, auth Authenticator) solana.PublicKey {
	signers := auth.GetSigners(ctx)
	if len(signers) == 0 {
		return solana.PublicKey{}
	}
	return signers[0]
}

// HasAllSigners returns true if all elements in required are
// also in context.
func HasAllSigners(ctx lockfund.Context, auth Authenticator, required ...solana.PublicKey) bool {
	return HasNSigners(ctx, auth, len(required), required...)
}

// HasNSigners returns true if at least n elements in requested are
// also in context.
func HasNSigners(ctx lockfund.Context, auth Authenticator, n int, requested ...solana.PublicKey) bool {
	if n <= 0 {
		return true
	}
	for _, r := range requested {
		if auth.HasSigner(ctx, r) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}
