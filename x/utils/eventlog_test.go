package utils

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(name string, payload ...byte) lockfund.Event {
	disc := lockfund.EventDiscriminator(name)
	return lockfund.Event{
		Program: ledgertest.NewPublicKey(),
		Name:    name,
		Data:    append(disc[:], payload...),
	}
}

func TestEventLog(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ctx := lockfund.WithHeight(context.Background(), 7)
	ctx = lockfund.WithBlockTime(ctx, now)
	kv := store.MemStore()
	log := NewEventLog()

	first, second := testEvent("Ping", 1, 2), testEvent("Pong")
	h := &ledgertest.Handler{
		DeliverResult: lockfund.DeliverResult{Events: []lockfund.Event{first, second}},
	}
	_, err := log.Deliver(ctx, kv, nil, h)
	require.NoError(t, err)

	// Check never persists.
	_, err = log.Check(ctx, kv, nil, h)
	require.NoError(t, err)

	// Failed instructions leave no trace.
	failing := &ledgertest.Handler{
		DeliverResult: lockfund.DeliverResult{Events: []lockfund.Event{testEvent("Lost")}},
		DeliverErr:    errors.ErrState,
	}
	_, err = log.Deliver(ctx, kv, nil, failing)
	require.Error(t, err)

	all, err := QueryEvents(kv, EventQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].Sequence)
	assert.Equal(t, int64(7), all[0].Height)
	assert.Equal(t, lockfund.AsUnixTime(now), all[0].Time)
	assert.Equal(t, first, all[0].Event())
	assert.Equal(t, second, all[1].Event())

	named, err := QueryEvents(kv, EventQuery{Name: "Pong"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, int64(2), named[0].Sequence)

	after, err := QueryEvents(kv, EventQuery{After: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Pong", after[0].Name)

	limited, err := QueryEvents(kv, EventQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Ping", limited[0].Name)

	byProgram, err := QueryEvents(kv, EventQuery{Program: second.Program})
	require.NoError(t, err)
	require.Len(t, byProgram, 1)
}

func TestEventRecordValidate(t *testing.T) {
	e := testEvent("Ping")
	rec := EventRecord{Sequence: 1, Program: e.Program, Name: e.Name, Data: e.Data}
	assert.NoError(t, rec.Validate())

	rec.Data = []byte{1, 2, 3}
	assert.True(t, errors.ErrModel.Is(rec.Validate()))

	rec = EventRecord{}
	assert.True(t, errors.ErrEmpty.Is(rec.Validate()))
}
