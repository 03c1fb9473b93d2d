package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
)

const (
	// EscrowSeed tags the vault derivation. The vault is seeded by the
	// authority key.
	EscrowSeed = "escrow"
	// ConfigSeed tags the config account derivation. The config account is
	// seeded by the vault address.
	ConfigSeed = "config"
)

// Addresses are the derived accounts of one lock fund.
type Addresses struct {
	Vault      solana.PublicKey
	VaultBump  uint8
	Config     solana.PublicKey
	ConfigBump uint8
}

// DeriveAddresses returns the vault and config account addresses of the
// lock fund created by authority.
func DeriveAddresses(programID, authority solana.PublicKey) (Addresses, error) {
	var a Addresses
	var err error
	if a.Vault, a.VaultBump, err = lockfund.Derive(programID, EscrowSeed, authority[:]); err != nil {
		return a, err
	}
	if a.Config, a.ConfigBump, err = lockfund.Derive(programID, ConfigSeed, a.Vault[:]); err != nil {
		return a, err
	}
	return a, nil
}

// VaultCapability reconstructs the signing proof of the vault governed by
// given config account using its stored bump.
func VaultCapability(programID solana.PublicKey, c *ConfigAccount) (lockfund.Capability, error) {
	return lockfund.NewCapability(programID, EscrowSeed, [][]byte{c.Authority[:]}, c.EscrowBump)
}

// configCapability reconstructs the signing proof of the config account.
func configCapability(programID, vault solana.PublicKey, bump uint8) (lockfund.Capability, error) {
	return lockfund.NewCapability(programID, ConfigSeed, [][]byte{vault[:]}, bump)
}
