/*
Package token implements a fungible token ledger compatible with the two
token program interfaces: the legacy one and the extended one. Both share
the same account model; the program id an account was created under is
stored with it and must match the program of every later instruction.

Balances are kept in token accounts. The associated token account of an
owner for a mint lives at an address derived by the associated token
account program.
*/
package token
