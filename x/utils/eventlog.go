package utils

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/orm"
)

const eventBucketName = "events"

// EventRecord is a persisted event together with the block it was emitted
// in.
type EventRecord struct {
	Sequence int64
	Height   int64
	Time     lockfund.UnixTime
	Program  solana.PublicKey
	Name     string
	Data     []byte
}

var _ orm.Model = (*EventRecord)(nil)

// Validate returns an error if the record is incomplete.
func (e *EventRecord) Validate() error {
	var errs error
	if e.Sequence <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "sequence"))
	}
	if e.Program.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "program"))
	}
	if e.Name == "" {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "name"))
	}
	if !lockfund.EventDiscriminator(e.Name).Equal(e.Data) {
		errs = errors.Append(errs, errors.Wrap(errors.ErrModel, "data discriminator"))
	}
	return errs
}

// Event returns the emitted event.
func (e *EventRecord) Event() lockfund.Event {
	return lockfund.Event{Program: e.Program, Name: e.Name, Data: e.Data}
}

// Marshal encodes the record with borsh.
func (e *EventRecord) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteInt64(e.Sequence, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(e.Height, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(int64(e.Time), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(e.Program[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteString(e.Name); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(len(e.Data)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(e.Data, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is the reverse of Marshal.
func (e *EventRecord) Unmarshal(raw []byte) (err error) {
	dec := bin.NewBorshDecoder(raw)
	var rec EventRecord
	if rec.Sequence, err = dec.ReadInt64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "sequence")
	}
	if rec.Height, err = dec.ReadInt64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "height")
	}
	t, err := dec.ReadInt64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "time")
	}
	rec.Time = lockfund.UnixTime(t)
	program, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "program")
	}
	rec.Program = solana.PublicKeyFromBytes(program)
	if rec.Name, err = dec.ReadString(); err != nil {
		return errors.Wrap(errors.ErrModel, "name")
	}
	size, err := dec.ReadUint32(bin.LE)
	if err != nil || int(size) != dec.Remaining() {
		return errors.Wrap(errors.ErrModel, "data length")
	}
	if rec.Data, err = dec.ReadNBytes(int(size)); err != nil {
		return errors.Wrap(errors.ErrModel, "data")
	}
	*e = rec
	return nil
}

// EventLog is a decorator that appends all events emitted by a successful
// instruction to the event log.
type EventLog struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

var _ lockfund.Decorator = EventLog{}

// NewEventLog creates an EventLog decorator.
func NewEventLog() EventLog {
	seq := orm.NewSequence(eventBucketName, "id")
	return EventLog{
		bucket: orm.NewModelBucket(eventBucketName),
		seq:    seq,
	}
}

// Check does not persist anything.
func (d EventLog) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Checker) (*lockfund.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

// Deliver persists emitted events after the instruction succeeded.
func (d EventLog) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Deliverer) (*lockfund.DeliverResult, error) {
	res, err := next.Deliver(ctx, store, tx)
	if err != nil || len(res.Events) == 0 {
		return res, err
	}

	height, _ := lockfund.GetHeight(ctx)
	var now lockfund.UnixTime
	if t, err := lockfund.BlockTime(ctx); err == nil {
		now = lockfund.AsUnixTime(t)
	}
	for _, e := range res.Events {
		seq, err := d.seq.NextInt(store)
		if err != nil {
			return nil, errors.Wrap(err, "event sequence")
		}
		rec := EventRecord{
			Sequence: seq,
			Height:   height,
			Time:     now,
			Program:  e.Program,
			Name:     e.Name,
			Data:     e.Data,
		}
		if _, err := d.bucket.Put(store, orm.EncodeSequence(seq), &rec); err != nil {
			return nil, errors.Wrapf(err, "store %s event", e.Name)
		}
	}
	return res, nil
}

// EventQuery selects a range of the event log.
type EventQuery struct {
	// After skips all events with sequence lower or equal to this value.
	After int64
	// Program if set only returns events of this program.
	Program solana.PublicKey
	// Name if set only returns events with this name.
	Name string
	// Limit is the maximum number of returned records. Zero means no
	// limit.
	Limit int
}

// QueryEvents returns the records of the event log matching the query,
// oldest first.
func QueryEvents(db lockfund.ReadOnlyKVStore, q EventQuery) ([]EventRecord, error) {
	var (
		res []EventRecord
		rec EventRecord
	)
	stop := errors.Wrap(errors.ErrState, "limit reached")
	err := orm.NewModelBucket(eventBucketName).Iterate(db, orm.EncodeSequence(q.After+1), nil, false, &rec, func([]byte) error {
		if !q.Program.IsZero() && !q.Program.Equals(rec.Program) {
			return nil
		}
		if q.Name != "" && q.Name != rec.Name {
			return nil
		}
		res = append(res, rec)
		if q.Limit > 0 && len(res) >= q.Limit {
			return stop
		}
		return nil
	})
	if err != nil && err != stop {
		return nil, err
	}
	return res, nil
}
