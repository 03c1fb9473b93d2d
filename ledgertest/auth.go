package ledgertest

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced keys.
// You can use either Signer or Signers (or both) attributes to reference
// keys. This is for the convinience and each time all signers
// (regardless which attribute) are considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convinience attribute when creating an authentication method for a
	// single signer.
	Signer solana.PublicKey

	// Signers represents an authentication of multiple signers.
	Signers []solana.PublicKey
}

func (a *Auth) GetSigners(lockfund.Context) []solana.PublicKey {
	if !a.Signer.IsZero() {
		return append(append([]solana.PublicKey(nil), a.Signers...), a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasSigner(ctx lockfund.Context, key solana.PublicKey) bool {
	for _, s := range a.GetSigners(ctx) {
		if key.Equals(s) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve signers.
type CtxAuth struct {
	// Key used to set and retrieve signers from the context. For
	// convinience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetSigners(ctx lockfund.Context, signers ...solana.PublicKey) lockfund.Context {
	return context.WithValue(ctx, a.Key, signers)
}

func (a *CtxAuth) GetSigners(ctx lockfund.Context) []solana.PublicKey {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	signers, ok := val.([]solana.PublicKey)
	if !ok {
		panic(fmt.Sprintf("instead of []solana.PublicKey got %T", val))
	}
	return signers
}

func (a *CtxAuth) HasSigner(ctx lockfund.Context, key solana.PublicKey) bool {
	for _, s := range a.GetSigners(ctx) {
		if key.Equals(s) {
			return true
		}
	}
	return false
}
