package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/lockfund/x/escrow"
)

// Config is the content of the CLI configuration file.
type Config struct {
	RPCURL        string `toml:"rpc_url"`
	WSURL         string `toml:"ws_url"`
	AuthorityPath string `toml:"authority_path"`
	ApproverPath  string `toml:"approver_path"`
	ProgramID     string `toml:"program_id"`

	// LedgerPath selects a local ledger database instead of the RPC
	// endpoint when set.
	LedgerPath string `toml:"ledger_path,omitempty"`
	// GenesisPath is used to initialize a fresh local ledger.
	GenesisPath string `toml:"genesis_path,omitempty"`
}

// DefaultConfig returns the configuration written by config-init.
func DefaultConfig() Config {
	return Config{
		RPCURL:        "https://api.mainnet-beta.solana.com",
		AuthorityPath: homePath(".config", "solana", "id.json"),
		ProgramID:     escrow.DefaultProgramID.String(),
	}
}

// LoadConfig reads the configuration file. A missing file is not an error,
// the default configuration is returned instead.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return conf, fmt.Errorf("cannot decode configuration file %q: %s", path, err)
	}
	return conf, nil
}

// SaveConfig writes the configuration file, creating its directory if
// needed.
func SaveConfig(path string, conf Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create configuration directory: %s", err)
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot create configuration file: %s", err)
	}
	defer fd.Close()

	if err := toml.NewEncoder(fd).Encode(conf); err != nil {
		return fmt.Errorf("cannot encode configuration: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close configuration file: %s", err)
	}
	return nil
}
