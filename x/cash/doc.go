/*
Package cash implements the native currency ledger.

Every address may own an account holding lamports. Accounts are created by
receiving lamports or by allocating them explicitly, in which case the payer
funds the rent exempt minimum for the requested data size.

Moving lamports requires the source to authorize the instruction, either with
a signature or with a capability for a derived address granted by the owning
program.
*/
package cash
