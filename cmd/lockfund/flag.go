package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// publicKeyValue implements flag.Value for base58 encoded public keys.
type publicKeyValue struct {
	key *solana.PublicKey
}

func (v publicKeyValue) String() string {
	if v.key == nil || v.key.IsZero() {
		return ""
	}
	return v.key.String()
}

func (v publicKeyValue) Set(raw string) error {
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return fmt.Errorf("invalid public key: %s", err)
	}
	*v.key = key
	return nil
}

// flPublicKey returns a value that is being initialized with given default
// value and optionally overwritten by a command line argument if provided.
// This function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPublicKey(fl *flag.FlagSet, name, defaultVal, usage string) *solana.PublicKey {
	var k solana.PublicKey
	if defaultVal != "" {
		var err error
		k, err = solana.PublicKeyFromBase58(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q public key flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(publicKeyValue{key: &k}, name, usage)
	return &k
}

// isFlagSet returns true if the flag of given name was provided on the
// command line.
func isFlagSet(fl *flag.FlagSet, name string) bool {
	var found bool
	fl.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
