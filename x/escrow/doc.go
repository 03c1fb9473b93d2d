/*
Package escrow implements the lock fund program.

A lock fund is a vault holding native lamports or token balances. The vault
address is derived from the authority key, so no private key exists for it.
Funds are released to the recipient fixed at creation, and only when both
the authority and the approver recorded in the config account sign the
transfer.

The config account stores a cliff time and a daily ceiling. Neither is
enforced by the transfer handlers; they are kept for clients and for future
policies.
*/
package escrow
