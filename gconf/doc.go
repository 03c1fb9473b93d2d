/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each program keeps a single configuration entry under its package name. The
entry is loaded from the genesis "conf" section and later read by handlers
with Load.
*/
package gconf
