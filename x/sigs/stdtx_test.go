package sigs

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxMarshal(t *testing.T) {
	key := ledgertest.KeyFromSeed("signer")
	d := lockfund.InstructionDiscriminator("send")
	ix := lockfund.NewInstruction(ledgertest.NewPublicKey(), solana.AccountMetaSlice{
		solana.NewAccountMeta(key.PublicKey(), true, true),
	}, d[:])
	tx := NewTx(ix)
	require.NoError(t, tx.Sign(key, "tx-test", 3))
	require.Len(t, tx.GetSignatures(), 1)
	assert.Equal(t, int64(3), tx.Signatures[0].Sequence)

	raw, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(raw)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)

	_, err = TxDecoder(append(raw, 0))
	assert.True(t, errors.ErrInput.Is(err))
	_, err = TxDecoder(raw[:len(raw)-1])
	assert.True(t, errors.ErrInput.Is(err))
}

func TestTxWithoutInstruction(t *testing.T) {
	tx := NewTx(nil)
	_, err := tx.Marshal()
	assert.True(t, errors.ErrEmpty.Is(err))
	err = tx.Sign(ledgertest.KeyFromSeed("signer"), "tx-test", 0)
	assert.True(t, errors.ErrEmpty.Is(err))
}
