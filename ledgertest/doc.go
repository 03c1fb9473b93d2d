/*
Package ledgertest provides mocks and helpers for testing extensions:
deterministic keys, authenticators, handlers, decorators and
transactions.
*/
package ledgertest
