package escrow

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
)

const (
	CreateConfigEventName = "CreateConfigEvent"
	TransferEventName     = "TransferEvent"
)

// CreateConfigEvent is emitted when a lock fund is created.
type CreateConfigEvent struct {
	Authority          solana.PublicKey
	Approver           solana.PublicKey
	Recipient          solana.PublicKey
	CliffTimeDuration  uint64
	AmountPerDay       uint64
	UpdateActorMode    UpdateActorMode
	EnableTransferFull uint8
}

func (e *CreateConfigEvent) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, k := range []solana.PublicKey{e.Authority, e.Approver, e.Recipient} {
		if err := enc.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	if err := enc.WriteUint64(e.CliffTimeDuration, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.AmountPerDay, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(e.UpdateActorMode)); err != nil {
		return err
	}
	return enc.WriteUint8(e.EnableTransferFull)
}

func (e *CreateConfigEvent) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	var ev CreateConfigEvent
	for _, k := range []*solana.PublicKey{&ev.Authority, &ev.Approver, &ev.Recipient} {
		if *k, err = readKey(dec); err != nil {
			return err
		}
	}
	if ev.CliffTimeDuration, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrInput, "cliff time duration")
	}
	if ev.AmountPerDay, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrInput, "amount per day")
	}
	mode, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrInput, "update actor mode")
	}
	ev.UpdateActorMode = UpdateActorMode(mode)
	if ev.EnableTransferFull, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrInput, "enable transfer full")
	}
	*e = ev
	return nil
}

// TransferEvent is emitted when funds leave a vault. For token transfers
// From and To are token accounts.
type TransferEvent struct {
	From          solana.PublicKey
	To            solana.PublicKey
	ConfigAccount solana.PublicKey
	Amount        uint64
}

func (e *TransferEvent) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, k := range []solana.PublicKey{e.From, e.To, e.ConfigAccount} {
		if err := enc.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	return enc.WriteUint64(e.Amount, bin.LE)
}

func (e *TransferEvent) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	var ev TransferEvent
	for _, k := range []*solana.PublicKey{&ev.From, &ev.To, &ev.ConfigAccount} {
		if *k, err = readKey(dec); err != nil {
			return err
		}
	}
	if ev.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrInput, "amount")
	}
	*e = ev
	return nil
}

func readKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(errors.ErrInput, "public key")
	}
	return solana.PublicKeyFromBytes(raw), nil
}
