package ledgertest

import "github.com/iov-one/lockfund"

// Handler is a mock implementation of the lockfund.Handler interface.
//
// It returns the configured results and counts calls. Set WriteKey to make
// both methods store WriteValue before returning, which is useful for testing
// atomicity of decorators.
type Handler struct {
	checkCall   int
	CheckResult lockfund.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult lockfund.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte

	// Panic if set makes both methods panic with this value.
	Panic interface{}
}

var _ lockfund.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) write(db lockfund.KVStore) error {
	if h.WriteKey != nil {
		if err := db.Set(h.WriteKey, h.WriteValue); err != nil {
			return err
		}
	}
	if h.Panic != nil {
		panic(h.Panic)
	}
	return nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
