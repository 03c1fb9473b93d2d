package lockfund

import (
	"crypto/sha256"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminators(t *testing.T) {
	sum := sha256.Sum256([]byte("global:transfer_sol"))
	d := InstructionDiscriminator("transfer_sol")
	assert.Equal(t, sum[:8], d[:])

	sum = sha256.Sum256([]byte("account:ConfigAccount"))
	d = AccountDiscriminator("ConfigAccount")
	assert.Equal(t, sum[:8], d[:])

	sum = sha256.Sum256([]byte("event:TransferEvent"))
	d = EventDiscriminator("TransferEvent")
	assert.Equal(t, sum[:8], d[:])

	assert.True(t, d.Equal(append(sum[:8], 1, 2, 3)))
	assert.False(t, d.Equal(sum[:4]))
}

func TestInstructionRoundTrip(t *testing.T) {
	d := InstructionDiscriminator("transfer_sol")
	ix := NewInstruction(testProgram, solana.AccountMetaSlice{
		solana.NewAccountMeta(testAuthority, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(testAuthority, false, true),
	}, append(d[:], 7, 0, 0, 0, 0, 0, 0, 0))

	raw, err := ix.Marshal()
	require.NoError(t, err)

	var got Instruction
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, testProgram, got.ProgramID())
	require.Len(t, got.Accounts(), 3)
	assert.True(t, got.Accounts()[0].IsWritable)
	assert.False(t, got.Accounts()[1].IsSigner)
	assert.Equal(t, []solana.PublicKey{testAuthority}, got.Signers())

	disc, err := got.Discriminator()
	require.NoError(t, err)
	assert.Equal(t, d, disc)
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, got.Args())

	path, err := got.Path()
	require.NoError(t, err)
	assert.Equal(t, RoutePath(testProgram, d), path)

	_, err = got.Account(3)
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestInstructionUnmarshalRejectsGarbage(t *testing.T) {
	var ix Instruction
	assert.Error(t, ix.Unmarshal([]byte{1, 2, 3}))

	short := NewInstruction(testProgram, nil, []byte{1, 2})
	_, err := short.Path()
	assert.True(t, errors.ErrMsg.Is(err))

	raw, err := short.Marshal()
	require.NoError(t, err)
	assert.Error(t, ix.Unmarshal(append(raw, 0)))
}

type testPayload struct {
	Amount uint64
}

func (p testPayload) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteUint64(p.Amount, bin.LE)
}

func (p *testPayload) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	p.Amount, err = dec.ReadUint64(bin.LE)
	return err
}

func TestEventEncoding(t *testing.T) {
	e, err := NewEvent(testProgram, "TransferEvent", testPayload{Amount: 42})
	require.NoError(t, err)
	assert.Len(t, e.Data, DiscriminatorLength+8)

	var got testPayload
	require.NoError(t, e.Decode(&got))
	assert.Equal(t, uint64(42), got.Amount)

	e.Name = "CreateConfigEvent"
	assert.True(t, errors.ErrType.Is(e.Decode(&got)))
}
