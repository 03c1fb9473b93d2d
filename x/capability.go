package x

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

type contextKey int

const contextKeyCapabilities contextKey = iota

// WithCapability grants the current instruction the right to act on behalf
// of a derived address. Only the program that derived the address, as
// declared in the context, may grant it.
func WithCapability(ctx lockfund.Context, c lockfund.Capability) (lockfund.Context, error) {
	if c.IsZero() {
		return nil, errors.Wrap(errors.ErrEmpty, "capability")
	}
	program, ok := lockfund.GetProgram(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "no executing program in context")
	}
	if !program.Equals(c.ProgramID()) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "program %s cannot act for addresses of %s", program, c.ProgramID())
	}
	caps := append(GetCapabilities(ctx), c)
	return context.WithValue(ctx, contextKeyCapabilities, caps), nil
}

// GetCapabilities returns all capabilities granted in this context.
func GetCapabilities(ctx lockfund.Context) []lockfund.Capability {
	caps, _ := ctx.Value(contextKeyCapabilities).([]lockfund.Capability)
	// Copy so that appends in nested contexts never share storage.
	return append([]lockfund.Capability(nil), caps...)
}

// CapabilityAuth authenticates derived addresses whose capability was
// granted in the context.
type CapabilityAuth struct{}

var _ Authenticator = CapabilityAuth{}

// GetSigners returns the addresses of all granted capabilities.
func (CapabilityAuth) GetSigners(ctx lockfund.Context) []solana.PublicKey {
	caps := GetCapabilities(ctx)
	res := make([]solana.PublicKey, len(caps))
	for i, c := range caps {
		res[i] = c.Address()
	}
	return res
}

// HasSigner returns true if a capability for the address was granted.
func (CapabilityAuth) HasSigner(ctx lockfund.Context, key solana.PublicKey) bool {
	for _, c := range GetCapabilities(ctx) {
		if c.Address().Equals(key) {
			return true
		}
	}
	return false
}
