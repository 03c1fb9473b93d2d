/*
Package client submits lock fund instructions and reads the resulting state.

Two implementations of Client exist. Local executes instructions against an
in-process ledger, each one in its own block. RPC talks to a Solana cluster
over JSON-RPC, where the lock fund program is deployed with the same
instruction and account encoding.
*/
package client
