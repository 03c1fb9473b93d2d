package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// isPath matches "<base58 program id>/<hex discriminator>".
var isPath = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}/[0-9a-f]{16}$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each instruction to the proper handler.
//
// The router marks the called program in the context, so that programs can
// sign for the addresses they derived.
type Router struct {
	routes map[string]lockfund.Handler
}

var _ lockfund.Registry = (*Router)(nil)
var _ lockfund.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]lockfund.Handler),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered.
func (r *Router) Handle(path string, h lockfund.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. If no path is found,
// returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) Handler(path string) lockfund.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on the instruction path.
func (r *Router) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	ctx, h, err := r.route(ctx, tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on the instruction path.
func (r *Router) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	ctx, h, err := r.route(ctx, tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, store, tx)
}

func (r *Router) route(ctx lockfund.Context, tx lockfund.Tx) (lockfund.Context, lockfund.Handler, error) {
	ix, err := tx.GetInstruction()
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot load instruction")
	}
	path, err := ix.Path()
	if err != nil {
		return nil, nil, err
	}
	return lockfund.WithProgram(ctx, ix.ProgramID()), r.Handler(path), nil
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(lockfund.Context, lockfund.KVStore, lockfund.Tx) (*lockfund.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for instruction %q", string(path))
}

func (path notFoundHandler) Deliver(lockfund.Context, lockfund.KVStore, lockfund.Tx) (*lockfund.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for instruction %q", string(path))
}
