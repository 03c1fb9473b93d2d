/*
Package x contains some standard extensions

Extensions are sub-packages that represent
a chunk of business logic, such as native balances,
token accounts, or the fund lock program.

They can be combined with each other, and with extensions
written elsewhere to build a ledger.

This package also contains the helpers shared by all
extensions: authentication of signers and capabilities
granted to derived addresses.
*/
package x
