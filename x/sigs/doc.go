/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

Every account that an instruction flags as a signer must
be covered by a valid signature, otherwise the transaction
is rejected before any program runs.
*/
package sigs
