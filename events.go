package lockfund

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
)

// Event is a notification emitted by a program while processing an
// instruction. Data is the event discriminator followed by the borsh
// encoded payload.
type Event struct {
	Program solana.PublicKey
	Name    string
	Data    []byte
}

// NewEvent serializes the payload of an event emitted by given program.
func NewEvent(program solana.PublicKey, name string, payload bin.BinaryMarshaler) (Event, error) {
	var buf bytes.Buffer
	d := EventDiscriminator(name)
	buf.Write(d[:])
	if err := payload.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return Event{}, errors.Wrapf(err, "encode %s", name)
	}
	return Event{Program: program, Name: name, Data: buf.Bytes()}, nil
}

// Decode unmarshals the event payload into dst. It fails if the
// discriminator does not match the event name.
func (e Event) Decode(dst bin.BinaryUnmarshaler) error {
	if !EventDiscriminator(e.Name).Equal(e.Data) {
		return errors.Wrapf(errors.ErrType, "not a %s event", e.Name)
	}
	dec := bin.NewBorshDecoder(e.Data[DiscriminatorLength:])
	if err := dst.UnmarshalWithDecoder(dec); err != nil {
		return errors.Wrapf(errors.ErrInput, "decode %s: %s", e.Name, err)
	}
	return nil
}
