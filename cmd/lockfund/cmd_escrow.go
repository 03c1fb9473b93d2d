package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/client"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/iov-one/lockfund/x/escrow"
)

// session is everything a command talking to a ledger needs.
type session struct {
	conf    Config
	program solana.PublicKey
	client  client.Client
	close   func() error
}

func openSession(cf commonFlags) (*session, error) {
	conf, err := LoadConfig(*cf.config)
	if err != nil {
		return nil, err
	}
	program, err := programID(conf)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(*cf.logLevel)
	if err != nil {
		return nil, err
	}
	c, closeFn, err := connect(conf, logger)
	if err != nil {
		return nil, err
	}
	return &session{conf: conf, program: program, client: c, close: closeFn}, nil
}

func (s *session) submit(ctx context.Context, output io.Writer, ix *lockfund.Instruction, signers ...solana.PrivateKey) error {
	sig, err := s.client.Submit(ctx, ix, signers...)
	if err != nil {
		code, log := errors.ResultInfo(err, false)
		return fmt.Errorf("cannot submit (code %d): %s", code, log)
	}
	_, err = fmt.Fprintln(output, sig)
	return err
}

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the vault and config account addresses of the lock fund created by
given authority.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = fl.String("config", defaultConfigPath(),
			"Path to the configuration file. You can use LOCKFUND_CONFIG environment variable to set it.")
		authorityFl = flPublicKey(fl, "authority", "", "Authority address. The configured authority key is used if not provided.")
	)
	fl.Parse(args)

	conf, err := LoadConfig(*confFl)
	if err != nil {
		return err
	}
	program, err := programID(conf)
	if err != nil {
		return err
	}
	authority := *authorityFl
	if authority.IsZero() {
		key, err := client.LoadKey(conf.AuthorityPath)
		if err != nil {
			return err
		}
		authority = key.PublicKey()
	}
	addrs, err := escrow.DeriveAddresses(program, authority)
	if err != nil {
		return err
	}
	return writeJSON(output, map[string]interface{}{
		"program":     program.String(),
		"authority":   authority.String(),
		"vault":       addrs.Vault.String(),
		"vault_bump":  addrs.VaultBump,
		"config":      addrs.Config.String(),
		"config_bump": addrs.ConfigBump,
	})
}

func cmdCreateConfig(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create the lock fund of the configured authority. The authority pays for
the config account. Fund the printed vault address afterwards.
`)
		fl.PrintDefaults()
	}
	var (
		cf          = registerCommonFlags(fl)
		recipientFl = flPublicKey(fl, "recipient", "", "Address receiving released funds. Required.")
		approverFl  = flPublicKey(fl, "approver", "", "Approver address. The configured approver key is used if not provided.")
		cliffFl     = fl.Uint64("cliff", 86400, "Seconds from now until the cliff time.")
		perDayFl    = fl.Uint64("amount-per-day", 1_000_000, "Intended daily withdrawal ceiling.")
		updateFl    = fl.Uint("update-actor-mode", 0, "Bit set of actors allowed to update: 1 authority, 2 approver, 4 recipient.")
		fullFl      = fl.Bool("enable-transfer-full", false, "Allow releasing the whole vault at once.")
		timeoutFl   = fl.Duration("timeout", time.Minute, "Time limit of the request.")
	)
	fl.Parse(args)

	if recipientFl.IsZero() {
		return fmt.Errorf("recipient is required")
	}
	if *updateFl > 0xff {
		return fmt.Errorf("invalid update actor mode %d", *updateFl)
	}
	s, err := openSession(cf)
	if err != nil {
		return err
	}
	defer s.close()

	authority, err := loadSigner(input, s.conf.AuthorityPath, *cf.encrypted)
	if err != nil {
		return fmt.Errorf("authority: %s", err)
	}
	approver := *approverFl
	if approver.IsZero() {
		key, err := loadSigner(input, s.conf.ApproverPath, *cf.encrypted)
		if err != nil {
			return fmt.Errorf("approver: %s", err)
		}
		approver = key.PublicKey()
	}

	params := escrow.CreateConfigParams{
		CliffTimeDuration: *cliffFl,
		AmountPerDay:      *perDayFl,
		UpdateActorMode:   escrow.UpdateActorMode(*updateFl),
	}
	if *fullFl {
		params.EnableTransferFull = 1
	}
	msg, err := escrow.NewCreateConfigMsg(s.program, authority.PublicKey(), approver, *recipientFl, params)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	if err := s.submit(ctx, output, msg.Instruction(), authority); err != nil {
		return err
	}
	return writeJSON(output, map[string]string{
		"config": msg.ConfigAccount.String(),
		"vault":  msg.Vault.String(),
	})
}

// loadFund returns the signers and the config account of the lock fund of
// the configured authority.
func loadFund(ctx context.Context, input io.Reader, s *session, cf commonFlags, account solana.PublicKey) (solana.PublicKey, *escrow.ConfigAccount, []solana.PrivateKey, error) {
	authority, err := loadSigner(input, s.conf.AuthorityPath, *cf.encrypted)
	if err != nil {
		return account, nil, nil, fmt.Errorf("authority: %s", err)
	}
	approver, err := loadSigner(input, s.conf.ApproverPath, *cf.encrypted)
	if err != nil {
		return account, nil, nil, fmt.Errorf("approver: %s", err)
	}
	if account.IsZero() {
		addrs, err := escrow.DeriveAddresses(s.program, authority.PublicKey())
		if err != nil {
			return account, nil, nil, err
		}
		account = addrs.Config
	}
	conf, err := s.client.ConfigAccount(ctx, account)
	if err != nil {
		return account, nil, nil, fmt.Errorf("cannot load config account %s: %s", account, err)
	}
	return account, conf, []solana.PrivateKey{authority, approver}, nil
}

func cmdTransferSol(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Release lamports from the vault to the recipient. Both the authority and the
approver key sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		cf        = registerCommonFlags(fl)
		accountFl = flPublicKey(fl, "account", "", "Config account. Derived from the authority if not provided.")
		amountFl  = fl.Uint64("amount", 0, "Lamports to release.")
		timeoutFl = fl.Duration("timeout", time.Minute, "Time limit of the request.")
	)
	fl.Parse(args)

	s, err := openSession(cf)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	account, conf, signers, err := loadFund(ctx, input, s, cf, *accountFl)
	if err != nil {
		return err
	}
	msg := escrow.NewTransferNativeMsg(s.program, account, conf, *amountFl)
	if err := msg.Validate(); err != nil {
		return err
	}
	return s.submit(ctx, output, msg.Instruction(), signers...)
}

func cmdTransferToken(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Release tokens from the vault token account to the token account of the
recipient. Both the authority and the approver key sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		cf        = registerCommonFlags(fl)
		accountFl = flPublicKey(fl, "account", "", "Config account. Derived from the authority if not provided.")
		mintFl    = flPublicKey(fl, "mint", "", "Mint of the released token. Required.")
		programFl = flPublicKey(fl, "token-program", solana.TokenProgramID.String(), "Token program owning the mint.")
		amountFl  = fl.Uint64("amount", 0, "Token base units to release.")
		timeoutFl = fl.Duration("timeout", time.Minute, "Time limit of the request.")
	)
	fl.Parse(args)

	if mintFl.IsZero() {
		return fmt.Errorf("mint is required")
	}
	s, err := openSession(cf)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	account, conf, signers, err := loadFund(ctx, input, s, cf, *accountFl)
	if err != nil {
		return err
	}
	msg, err := escrow.NewTransferTokenMsg(s.program, account, conf, *mintFl, *programFl, *amountFl)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return s.submit(ctx, output, msg.Instruction(), signers...)
}

func cmdEscrowConfig(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the content of a config account.
`)
		fl.PrintDefaults()
	}
	var (
		cf        = registerCommonFlags(fl)
		accountFl = flPublicKey(fl, "account", "", "Config account. Derived from the configured authority key if not provided.")
		timeoutFl = fl.Duration("timeout", time.Minute, "Time limit of the request.")
	)
	fl.Parse(args)

	s, err := openSession(cf)
	if err != nil {
		return err
	}
	defer s.close()

	account := *accountFl
	if account.IsZero() {
		key, err := loadSigner(input, s.conf.AuthorityPath, *cf.encrypted)
		if err != nil {
			return fmt.Errorf("authority: %s", err)
		}
		addrs, err := escrow.DeriveAddresses(s.program, key.PublicKey())
		if err != nil {
			return err
		}
		account = addrs.Config
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	conf, err := s.client.ConfigAccount(ctx, account)
	if err != nil {
		return fmt.Errorf("cannot load config account %s: %s", account, err)
	}
	return writeJSON(output, configView{
		Account:            account.String(),
		Authority:          conf.Authority.String(),
		Approver:           conf.Approver.String(),
		Recipient:          conf.Recipient.String(),
		Vault:              conf.Vault.String(),
		CliffTime:          conf.CliffTime,
		AmountPerDay:       conf.AmountPerDay,
		UpdateActorMode:    uint8(conf.UpdateActorMode),
		EnableTransferFull: conf.EnableTransferFull != 0,
		ConfigBump:         conf.ConfigBump,
		EscrowBump:         conf.EscrowBump,
	})
}

type configView struct {
	Account            string `json:"account"`
	Authority          string `json:"authority"`
	Approver           string `json:"approver"`
	Recipient          string `json:"recipient"`
	Vault              string `json:"vault"`
	CliffTime          uint64 `json:"cliff_time"`
	AmountPerDay       uint64 `json:"amount_per_day"`
	UpdateActorMode    uint8  `json:"update_actor_mode"`
	EnableTransferFull bool   `json:"enable_transfer_full"`
	ConfigBump         uint8  `json:"config_bump"`
	EscrowBump         uint8  `json:"escrow_bump"`
}

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Send lamports from the authority to any address, for example to fund a
vault. This instruction is only understood by a local ledger.
`)
		fl.PrintDefaults()
	}
	var (
		cf        = registerCommonFlags(fl)
		toFl      = flPublicKey(fl, "to", "", "Receiving address. Required.")
		amountFl  = fl.Uint64("amount", 0, "Lamports to send.")
		timeoutFl = fl.Duration("timeout", time.Minute, "Time limit of the request.")
	)
	fl.Parse(args)

	s, err := openSession(cf)
	if err != nil {
		return err
	}
	defer s.close()
	if s.conf.LedgerPath == "" {
		return fmt.Errorf("send requires a local ledger, set ledger_path")
	}

	from, err := loadSigner(input, s.conf.AuthorityPath, *cf.encrypted)
	if err != nil {
		return fmt.Errorf("authority: %s", err)
	}
	msg := cash.SendMsg{From: from.PublicKey(), To: *toFl, Lamports: *amountFl}
	if err := msg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	return s.submit(ctx, output, msg.Instruction(), from)
}

func writeJSON(output io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s\n", raw)
	return err
}
