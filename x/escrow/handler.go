package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/iov-one/lockfund/x/token"
)

// RegisterRoutes will instantiate and register all handlers of the program
// deployed at programID.
func RegisterRoutes(r lockfund.Registry, auth x.Authenticator, programID solana.PublicKey, cashctrl cash.Controller, tokenctrl token.Controller) {
	bucket := NewBucket()
	r.Handle(lockfund.RoutePath(programID, CreateConfigDiscriminator), CreateConfigHandler{
		auth:      auth,
		bucket:    bucket,
		bank:      cashctrl,
		programID: programID,
	})
	r.Handle(lockfund.RoutePath(programID, TransferNativeDiscriminator), TransferNativeHandler{
		auth:      auth,
		bucket:    bucket,
		bank:      cashctrl,
		programID: programID,
	})
	r.Handle(lockfund.RoutePath(programID, TransferTokenDiscriminator), TransferTokenHandler{
		auth:      auth,
		bucket:    bucket,
		tokens:    tokenctrl,
		programID: programID,
	})
}

// CreateConfigHandler creates lock funds.
type CreateConfigHandler struct {
	auth      x.Authenticator
	bucket    Bucket
	bank      cash.Controller
	programID solana.PublicKey
}

var _ lockfund.Handler = CreateConfigHandler{}

// Check verifies the instruction can be executed against the current state.
func (h CreateConfigHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

// Deliver allocates the config account and the vault and stores the lock
// fund policy.
func (h CreateConfigHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, addrs, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	now, err := lockfund.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	cliff, err := lockfund.AsUnixTime(now).AddSeconds(msg.CliffTimeDuration)
	if err != nil {
		return nil, errors.Wrap(err, "cliff time")
	}

	conf, err := cash.LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	rent, err := conf.MinimumBalance(ConfigAccountSpace)
	if err != nil {
		return nil, err
	}

	// Sign for both derived addresses, as their creation must be
	// authorized by the new accounts themselves.
	vaultCap, err := lockfund.NewCapability(h.programID, EscrowSeed, [][]byte{msg.Authority[:]}, addrs.VaultBump)
	if err != nil {
		return nil, err
	}
	configCap, err := configCapability(h.programID, addrs.Vault, addrs.ConfigBump)
	if err != nil {
		return nil, err
	}
	for _, c := range []lockfund.Capability{vaultCap, configCap} {
		if ctx, err = x.WithCapability(ctx, c); err != nil {
			return nil, err
		}
	}

	// The vault stays a plain system account. Lamports sent to either
	// address before creation are kept.
	if err := h.bank.Allocate(ctx, db, msg.Authority, addrs.Config, rent, ConfigAccountSpace, h.programID); err != nil {
		return nil, allocationError(err, "allocate config account")
	}
	if err := h.bank.Allocate(ctx, db, msg.Authority, addrs.Vault, 0, 0, cash.ProgramID); err != nil {
		return nil, allocationError(err, "allocate vault")
	}

	account := ConfigAccount{
		Authority:          msg.Authority,
		Approver:           msg.Approver,
		Recipient:          msg.Recipient,
		Vault:              addrs.Vault,
		CliffTime:          cliff,
		AmountPerDay:       msg.AmountPerDay,
		UpdateActorMode:    msg.UpdateActorMode,
		EnableTransferFull: msg.EnableTransferFull,
		ConfigBump:         addrs.ConfigBump,
		EscrowBump:         addrs.VaultBump,
	}
	if _, err := h.bucket.Put(db, addrs.Config[:], &account); err != nil {
		return nil, errors.Wrap(err, "store config account")
	}

	event, err := lockfund.NewEvent(h.programID, CreateConfigEventName, &CreateConfigEvent{
		Authority:          msg.Authority,
		Approver:           msg.Approver,
		Recipient:          msg.Recipient,
		CliffTimeDuration:  msg.CliffTimeDuration,
		AmountPerDay:       msg.AmountPerDay,
		UpdateActorMode:    msg.UpdateActorMode,
		EnableTransferFull: msg.EnableTransferFull,
	})
	if err != nil {
		return nil, err
	}

	lockfund.GetLogger(ctx).Info("lock fund created", "config", addrs.Config, "vault", addrs.Vault, "cliff", cliff)
	return &lockfund.DeliverResult{
		Data:   addrs.Config[:],
		Events: []lockfund.Event{event},
	}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h CreateConfigHandler) validate(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*CreateConfigMsg, *Addresses, error) {
	var msg CreateConfigMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasSigner(ctx, msg.Authority) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "authority signature missing")
	}
	if msg.Authority.Equals(msg.Approver) {
		return nil, nil, errors.Wrap(ErrDuplicatePubkey, "authority and approver")
	}

	addrs, err := DeriveAddresses(h.programID, msg.Authority)
	if err != nil {
		return nil, nil, err
	}
	if !msg.Vault.Equals(addrs.Vault) {
		return nil, nil, errors.Wrapf(ErrInvalidEscrow, "vault must be %s", addrs.Vault)
	}
	if !msg.ConfigAccount.Equals(addrs.Config) {
		return nil, nil, errors.Wrapf(ErrInvalidEscrow, "config account must be %s", addrs.Config)
	}

	switch err := h.bucket.Has(db, addrs.Config[:]); {
	case err == nil:
		return nil, nil, errors.Wrapf(ErrAccountAlreadyExists, "config account %s", addrs.Config)
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}
	return &msg, &addrs, nil
}

// allocationError reports an address already allocated by a program as an
// existing account.
func allocationError(err error, msg string) error {
	if cash.ErrAccountInUse.Is(err) {
		return errors.Wrap(ErrAccountAlreadyExists, err.Error())
	}
	return errors.Wrap(err, msg)
}

// TransferNativeHandler releases lamports from a vault.
type TransferNativeHandler struct {
	auth      x.Authenticator
	bucket    Bucket
	bank      cash.Controller
	programID solana.PublicKey
}

var _ lockfund.Handler = TransferNativeHandler{}

func (h TransferNativeHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

// Deliver moves lamports from the vault to the recipient, signing with the
// vault capability.
func (h TransferNativeHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	vaultCap, err := VaultCapability(h.programID, conf)
	if err != nil {
		return nil, err
	}
	if ctx, err = x.WithCapability(ctx, vaultCap); err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(ctx, db, conf.Vault, conf.Recipient, msg.Amount); err != nil {
		return nil, err
	}

	event, err := lockfund.NewEvent(h.programID, TransferEventName, &TransferEvent{
		From:          conf.Vault,
		To:            conf.Recipient,
		ConfigAccount: msg.ConfigAccount,
		Amount:        msg.Amount,
	})
	if err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{Events: []lockfund.Event{event}}, nil
}

func (h TransferNativeHandler) validate(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*TransferNativeMsg, *ConfigAccount, error) {
	var msg TransferNativeMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := h.bucket.Get(db, msg.ConfigAccount)
	if err != nil {
		return nil, nil, err
	}
	if err := checkTransfer(ctx, h.auth, conf, msg.Vault, msg.Recipient, msg.Authority, msg.Approver); err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

// TransferTokenHandler releases tokens from a vault token account.
type TransferTokenHandler struct {
	auth      x.Authenticator
	bucket    Bucket
	tokens    token.Controller
	programID solana.PublicKey
}

var _ lockfund.Handler = TransferTokenHandler{}

func (h TransferTokenHandler) Check(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockfund.CheckResult{}, nil
}

// Deliver moves tokens from the vault token account to the recipient token
// account through the token program selected by the instruction.
func (h TransferTokenHandler) Deliver(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*lockfund.DeliverResult, error) {
	msg, conf, iface, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	mint, err := h.tokens.Mint(db, msg.Mint)
	if err != nil {
		return nil, err
	}

	vaultCap, err := VaultCapability(h.programID, conf)
	if err != nil {
		return nil, err
	}
	if ctx, err = x.WithCapability(ctx, vaultCap); err != nil {
		return nil, err
	}

	switch iface {
	case token.Legacy:
		err = h.tokens.TransferChecked(ctx, db, solana.TokenProgramID, msg.VaultToken, msg.Mint, msg.RecipientToken, conf.Vault, msg.Amount, mint.Decimals)
	case token.Extended:
		err = h.tokens.TransferChecked(ctx, db, solana.Token2022ProgramID, msg.VaultToken, msg.Mint, msg.RecipientToken, conf.Vault, msg.Amount, mint.Decimals)
	default:
		err = errors.Wrapf(token.ErrInvalidProgram, "interface %s", iface)
	}
	if err != nil {
		return nil, err
	}

	event, err := lockfund.NewEvent(h.programID, TransferEventName, &TransferEvent{
		From:          msg.VaultToken,
		To:            msg.RecipientToken,
		ConfigAccount: msg.ConfigAccount,
		Amount:        msg.Amount,
	})
	if err != nil {
		return nil, err
	}
	return &lockfund.DeliverResult{Events: []lockfund.Event{event}}, nil
}

func (h TransferTokenHandler) validate(ctx lockfund.Context, db lockfund.KVStore, tx lockfund.Tx) (*TransferTokenMsg, *ConfigAccount, token.Interface, error) {
	var msg TransferTokenMsg
	if err := lockfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}
	iface, err := token.InterfaceOf(msg.TokenProgram)
	if err != nil {
		return nil, nil, 0, err
	}
	conf, err := h.bucket.Get(db, msg.ConfigAccount)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := checkTransfer(ctx, h.auth, conf, msg.Vault, msg.Recipient, msg.Authority, msg.Approver); err != nil {
		return nil, nil, 0, err
	}

	vaultToken, err := token.AssociatedAddress(conf.Vault, msg.TokenProgram, msg.Mint)
	if err != nil {
		return nil, nil, 0, err
	}
	if !msg.VaultToken.Equals(vaultToken) {
		return nil, nil, 0, errors.Wrapf(ErrInvalidEscrow, "vault token account must be %s", vaultToken)
	}
	recipientToken, err := token.AssociatedAddress(conf.Recipient, msg.TokenProgram, msg.Mint)
	if err != nil {
		return nil, nil, 0, err
	}
	if !msg.RecipientToken.Equals(recipientToken) {
		return nil, nil, 0, errors.Wrapf(ErrInvalidRecipient, "recipient token account must be %s", recipientToken)
	}
	return &msg, conf, iface, nil
}

// checkTransfer verifies the account bindings of a transfer and that both
// the authority and the approver of the lock fund signed it.
func checkTransfer(ctx lockfund.Context, auth x.Authenticator, conf *ConfigAccount, vault, recipient, authority, approver solana.PublicKey) error {
	if !vault.Equals(conf.Vault) {
		return errors.Wrapf(ErrInvalidEscrow, "vault must be %s", conf.Vault)
	}
	if !recipient.Equals(conf.Recipient) {
		return errors.Wrapf(ErrInvalidRecipient, "recipient must be %s", conf.Recipient)
	}
	if !authority.Equals(conf.Authority) {
		return errors.Wrap(ErrUnauthorized, "authority does not match config account")
	}
	if !approver.Equals(conf.Approver) {
		return errors.Wrap(ErrUnauthorized, "approver does not match config account")
	}
	if !x.HasAllSigners(ctx, auth, conf.Authority, conf.Approver) {
		return errors.Wrap(ErrUnauthorized, "authority and approver must both sign")
	}
	return nil
}
