package cash

import (
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r lockfund.Registry, auth x.Authenticator, control Controller) {
	r.Handle(lockfund.RoutePath(ProgramID, SendDiscriminator), NewSendHandler(auth, control))
}

// SendHandler will handle sending lamports
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ lockfund.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and authorized
func (h SendHandler) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

// Deliver moves the lamports from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(ctx, store, msg.From, msg.To, msg.Lamports); err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx lockfund.Context, tx lockfund.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// Make sure we have permission from the source.
	if !h.auth.HasSigner(ctx, msg.From) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}
