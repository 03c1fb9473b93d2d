package token

import (
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
)

// RegisterRoutes registers the handlers of both token program interfaces
// and of the associated token account program.
func RegisterRoutes(r lockfund.Registry, auth x.Authenticator, control Controller) {
	for _, iface := range []Interface{Legacy, Extended} {
		program := iface.ProgramID()
		r.Handle(lockfund.RoutePath(program, CreateMintDiscriminator), CreateMintHandler{auth: auth, control: control})
		r.Handle(lockfund.RoutePath(program, MintToDiscriminator), MintToHandler{control: control})
		r.Handle(lockfund.RoutePath(program, TransferDiscriminator), TransferHandler{control: control})
	}
	r.Handle(lockfund.RoutePath(AssociatedProgramID, CreateAccountDiscriminator), CreateAccountHandler{auth: auth, control: control})
}

// CreateMintHandler registers mints.
type CreateMintHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ lockfund.Handler = CreateMintHandler{}

func (h CreateMintHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

func (h CreateMintHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.CreateMint(ctx, db, msg.Program, msg.Mint, msg.Decimals, msg.Authority); err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{Data: msg.Mint[:]}, nil
}

func (h CreateMintHandler) validate(ctx lockfund.Context, tx lockfund.Tx) (*CreateMintMsg, error) {
	var msg CreateMintMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasSigner(ctx, msg.Mint) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "mint signature missing")
	}
	return &msg, nil
}

// CreateAccountHandler opens associated token accounts.
type CreateAccountHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ lockfund.Handler = CreateAccountHandler{}

func (h CreateAccountHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

func (h CreateAccountHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, err := h.control.CreateAssociatedAccount(db, msg.Program, msg.Owner, msg.Mint)
	if err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{Data: addr[:]}, nil
}

func (h CreateAccountHandler) validate(ctx lockfund.Context, tx lockfund.Tx) (*CreateAccountMsg, error) {
	var msg CreateAccountMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasSigner(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}

// MintToHandler issues tokens. Authorization is verified by the controller
// against the stored mint authority.
type MintToHandler struct {
	control Controller
}

var _ lockfund.Handler = MintToHandler{}

func (h MintToHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	var msg MintToMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &lockfund.CheckResult{}, nil
}

func (h MintToHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	var msg MintToMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.control.MintTo(ctx, db, msg.Program, msg.Mint, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{}, nil
}

// TransferHandler moves tokens. Authorization is verified by the controller
// against the source account owner.
type TransferHandler struct {
	control Controller
}

var _ lockfund.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	var msg TransferMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &lockfund.CheckResult{}, nil
}

func (h TransferHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	var msg TransferMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	err := h.control.TransferChecked(ctx, db, msg.Program, msg.Source, msg.Mint, msg.Destination, msg.Owner, msg.Amount, msg.Decimals)
	if err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{}, nil
}
