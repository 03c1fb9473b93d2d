package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/app"
	"github.com/iov-one/lockfund/client"
	lfapp "github.com/iov-one/lockfund/cmd/lockfund/app"
	"github.com/iov-one/lockfund/crypto/keyfile"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/term"
)

// commonFlags are shared by all commands talking to a ledger.
type commonFlags struct {
	config    *string
	logLevel  *string
	encrypted *bool
}

func registerCommonFlags(fl *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fl.String("config", defaultConfigPath(),
			"Path to the configuration file. You can use LOCKFUND_CONFIG environment variable to set it."),
		logLevel: fl.String("log-level", env("LOCKFUND_LOG_LEVEL", "error"),
			"Log level of the local ledger: debug, info, error or none."),
		encrypted: fl.Bool("encrypted", false,
			"Key files are sealed with the encrypt command. The password is read from the terminal."),
	}
}

// newLogger returns a logger writing to stderr, filtered by level.
func newLogger(level string) (log.Logger, error) {
	if level == "none" {
		return log.NewNopLogger(), nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	return log.NewFilter(logger, opt), nil
}

// connect returns a client as configured. A local ledger is used when the
// configuration names one, the RPC endpoint otherwise. The returned
// function releases the client resources.
func connect(conf Config, logger log.Logger) (client.Client, func() error, error) {
	if conf.LedgerPath == "" {
		if conf.RPCURL == "" {
			return nil, nil, fmt.Errorf("rpc_url is not configured")
		}
		return client.NewRPC(conf.RPCURL), func() error { return nil }, nil
	}

	var gen *app.Genesis
	if conf.GenesisPath != "" {
		g, err := app.LoadGenesis(conf.GenesisPath)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot load genesis: %s", err)
		}
		gen = &g
	}
	ledger, err := lfapp.Application(conf.LedgerPath, gen, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open local ledger: %s", err)
	}
	if ledger.ChainID() == "" {
		ledger.Close()
		return nil, nil, fmt.Errorf("local ledger %q has no genesis, set genesis_path", conf.LedgerPath)
	}
	return client.NewLocal(ledger), ledger.Close, nil
}

// programID returns the configured program address.
func programID(conf Config) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(conf.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program_id %q: %s", conf.ProgramID, err)
	}
	return key, nil
}

// loadSigner reads a key file. Sealed key files are opened with a password
// read from the terminal.
func loadSigner(input io.Reader, path string, encrypted bool) (solana.PrivateKey, error) {
	if path == "" {
		return nil, fmt.Errorf("key file path is not configured")
	}
	if !encrypted {
		return client.LoadKey(path)
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read key file: %s", err)
	}
	sealed, err := client.DecodeByteArray(raw)
	if err != nil {
		return nil, err
	}
	password, err := readPassword(input, fmt.Sprintf("Password of %s: ", path))
	if err != nil {
		return nil, err
	}
	secret, err := keyfile.Decrypt(sealed, password, nil)
	if err != nil {
		return nil, err
	}
	return client.KeyFromSecret(secret)
}

// readPassword prompts for a password. The terminal echo is disabled when
// the input is a terminal, otherwise a single line is read.
var readPassword = func(input io.Reader, prompt string) ([]byte, error) {
	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("cannot read password: %s", err)
		}
		return password, nil
	}
	return readLine(input)
}

// readLine reads a single line without buffering, so that following reads
// of the same input see the next line.
func readLine(input io.Reader) ([]byte, error) {
	var line []byte
	b := make([]byte, 1)
	for {
		n, err := input.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			line = append(line, b[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read password: %s", err)
		}
	}
	return bytes.TrimRight(line, "\r"), nil
}
