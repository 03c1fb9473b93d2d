package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"
)

func cmdConfigInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a configuration file with default values.

This command fails if the configuration file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = fl.String("config", defaultConfigPath(),
			"Path to the configuration file. You can use LOCKFUND_CONFIG environment variable to set it.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*confFl); !os.IsNotExist(err) {
		return fmt.Errorf("configuration file %q already exists", *confFl)
	}
	conf := DefaultConfig()
	if err := SaveConfig(*confFl, conf); err != nil {
		return err
	}
	return toml.NewEncoder(output).Encode(conf)
}

func cmdConfigGet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the current configuration.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = fl.String("config", defaultConfigPath(),
			"Path to the configuration file. You can use LOCKFUND_CONFIG environment variable to set it.")
	)
	fl.Parse(args)

	conf, err := LoadConfig(*confFl)
	if err != nil {
		return err
	}
	return toml.NewEncoder(output).Encode(conf)
}

func cmdConfigSet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Update configuration values. Only values of provided flags are changed.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = fl.String("config", defaultConfigPath(),
			"Path to the configuration file. You can use LOCKFUND_CONFIG environment variable to set it.")
		rpcFl       = fl.String("rpc-url", "", "RPC URL of the Solana cluster.")
		wsFl        = fl.String("ws-url", "", "Websocket URL of the Solana cluster.")
		authorityFl = fl.String("authority", "", "Path to the authority key file.")
		approverFl  = fl.String("approver", "", "Path to the approver key file.")
		programFl   = fl.String("program", "", "Address of the lock fund program.")
		ledgerFl    = fl.String("ledger", "", "Path to a local ledger database. Use an empty value to talk to the RPC URL.")
		genesisFl   = fl.String("genesis", "", "Path to the genesis file of the local ledger.")
	)
	fl.Parse(args)

	conf, err := LoadConfig(*confFl)
	if err != nil {
		return err
	}
	if isFlagSet(fl, "program") {
		if _, err := solana.PublicKeyFromBase58(*programFl); err != nil {
			return fmt.Errorf("invalid program address: %s", err)
		}
	}
	set := map[string]struct {
		dst *string
		val string
	}{
		"rpc-url":   {&conf.RPCURL, *rpcFl},
		"ws-url":    {&conf.WSURL, *wsFl},
		"authority": {&conf.AuthorityPath, *authorityFl},
		"approver":  {&conf.ApproverPath, *approverFl},
		"program":   {&conf.ProgramID, *programFl},
		"ledger":    {&conf.LedgerPath, *ledgerFl},
		"genesis":   {&conf.GenesisPath, *genesisFl},
	}
	for name, s := range set {
		if isFlagSet(fl, name) {
			*s.dst = s.val
		}
	}
	if err := SaveConfig(*confFl, conf); err != nil {
		return err
	}
	return toml.NewEncoder(output).Encode(conf)
}
