package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/client"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file in the Solana keygen format is created and the
public key is printed. This command fails if the private key file already
exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", env("LOCKFUND_KEY", homePath(".config", "solana", "id.json")),
			"Path to the private key file. You can use LOCKFUND_KEY environment variable to set it.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return fmt.Errorf("cannot generate ed25519 key: %s", err)
	}
	if err := client.WriteKey(*keyPathFl, key); err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the base58 address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", env("LOCKFUND_KEY", homePath(".config", "solana", "id.json")),
			"Path to the private key file. You can use LOCKFUND_KEY environment variable to set it.")
		encryptedFl = fl.Bool("encrypted", false, "The key file is sealed with the encrypt command.")
	)
	fl.Parse(args)

	key, err := loadSigner(input, *keyPathFl, *encryptedFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}
