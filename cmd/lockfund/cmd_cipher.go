package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/lockfund/client"
	"github.com/iov-one/lockfund/crypto/keyfile"
)

func cmdEncrypt(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Seal a private key with a password.

The sealed key is written to the output as a JSON array of bytes. Unless
provided with a flag, the password is read from the terminal.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", env("LOCKFUND_KEY", homePath(".config", "solana", "id.json")),
			"Path to the private key file. You can use LOCKFUND_KEY environment variable to set it.")
		passwordFl = fl.String("password", "", "Password to seal the key with.")
		aadFl      = fl.String("aad", "", "Hex encoded additional data authenticated with the key.")
	)
	fl.Parse(args)

	key, err := client.LoadKey(*keyPathFl)
	if err != nil {
		return err
	}
	aad, err := hex.DecodeString(*aadFl)
	if err != nil {
		return fmt.Errorf("invalid aad: %s", err)
	}
	password, err := passwordArg(input, *passwordFl, isFlagSet(fl, "password"))
	if err != nil {
		return err
	}
	sealed, err := keyfile.Encrypt(key, password, aad)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s\n", client.EncodeByteArray(sealed))
	return err
}

func cmdDecrypt(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Open a private key sealed by the encrypt command.

The key is written to the output in the Solana keygen format. Unless
provided with a flag, the password is read from the terminal.
`)
		fl.PrintDefaults()
	}
	var (
		sealedFl   = fl.String("in", "", "Path to the sealed key file.")
		passwordFl = fl.String("password", "", "Password the key was sealed with.")
		aadFl      = fl.String("aad", "", "Hex encoded additional data the key was sealed with.")
	)
	fl.Parse(args)

	if *sealedFl == "" {
		return fmt.Errorf("sealed key file path is required")
	}
	raw, err := ioutil.ReadFile(*sealedFl)
	if err != nil {
		return fmt.Errorf("cannot read sealed key: %s", err)
	}
	sealed, err := client.DecodeByteArray(raw)
	if err != nil {
		return err
	}
	aad, err := hex.DecodeString(*aadFl)
	if err != nil {
		return fmt.Errorf("invalid aad: %s", err)
	}
	password, err := passwordArg(input, *passwordFl, isFlagSet(fl, "password"))
	if err != nil {
		return err
	}
	secret, err := keyfile.Decrypt(sealed, password, aad)
	if err != nil {
		return err
	}
	key, err := client.KeyFromSecret(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s\n", client.EncodeByteArray(key))
	return err
}

// passwordArg returns the password given by flag or prompts for one.
func passwordArg(input io.Reader, flagVal string, set bool) ([]byte, error) {
	if set {
		return []byte(flagVal), nil
	}
	return readPassword(input, "Password: ")
}
