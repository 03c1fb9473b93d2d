package token

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instructionMsg interface {
	lockfund.InstructionMsg
	Instruction() *lockfund.Instruction
}

func TestMsgInstructions(t *testing.T) {
	owner, mint := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	create, err := NewCreateAccountMsg(ledgertest.NewPublicKey(), owner, mint, solana.Token2022ProgramID)
	require.NoError(t, err)

	cases := map[string]struct {
		msg   instructionMsg
		empty instructionMsg
	}{
		"create mint": {
			msg: &CreateMintMsg{
				Program:   solana.TokenProgramID,
				Mint:      mint,
				Decimals:  9,
				Authority: ledgertest.NewPublicKey(),
			},
			empty: &CreateMintMsg{},
		},
		"create account": {
			msg:   create,
			empty: &CreateAccountMsg{},
		},
		"mint to": {
			msg: &MintToMsg{
				Program:     solana.Token2022ProgramID,
				Mint:        mint,
				Destination: ledgertest.NewPublicKey(),
				Authority:   ledgertest.NewPublicKey(),
				Amount:      1,
			},
			empty: &MintToMsg{},
		},
		"transfer": {
			msg: &TransferMsg{
				Program:     solana.TokenProgramID,
				Source:      ledgertest.NewPublicKey(),
				Mint:        mint,
				Destination: ledgertest.NewPublicKey(),
				Owner:       owner,
				Amount:      123456,
				Decimals:    6,
			},
			empty: &TransferMsg{},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			require.NoError(t, tc.msg.Validate())
			ix := tc.msg.Instruction()
			require.NoError(t, tc.empty.UnmarshalInstruction(ix))
			assert.Equal(t, tc.msg, tc.empty)
			assert.Error(t, tc.empty.UnmarshalInstruction(lockfund.NewInstruction(ix.ProgramID(), ix.Accounts(), []byte{1, 2, 3})))
		})
	}
}

func TestCreateAccountMsgValidate(t *testing.T) {
	msg, err := NewCreateAccountMsg(ledgertest.NewPublicKey(), ledgertest.NewPublicKey(), ledgertest.NewPublicKey(), solana.TokenProgramID)
	require.NoError(t, err)
	require.NoError(t, msg.Validate())

	msg.Account = ledgertest.NewPublicKey()
	assert.True(t, errors.ErrInput.Is(msg.Validate()))

	msg.Program = solana.SystemProgramID
	assert.True(t, ErrInvalidProgram.Is(msg.Validate()))

	_, err = NewCreateAccountMsg(msg.Payer, msg.Owner, msg.Mint, solana.SystemProgramID)
	assert.True(t, ErrInvalidProgram.Is(err))
}

func TestTransferMsgValidate(t *testing.T) {
	msg := TransferMsg{Program: solana.TokenProgramID}
	err := msg.Validate()
	assert.True(t, errors.Contains(err, errors.ErrEmpty))
	assert.True(t, errors.Contains(err, errors.ErrAmount))
}
