/*
Package errors implements custom error interfaces for lockfund.

The idea is to reuse as many errors from this package as possible and define
custom extension errors only when absolutely necessary. Extensions register
their own root errors with Register(code, description), see x/escrow for an
example.

Code allows a client to distinguish the kind of failure and act accordingly.
A handler never returns a bare root error when it can add context:

	return errors.Wrapf(errors.ErrUnauthorized, "approver %s", approver)

Stack traces are attached at the innermost Wrap. Use %+v when printing an
error to see it.
*/
package errors
