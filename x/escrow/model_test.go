package escrow

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfigAccount() ConfigAccount {
	return ConfigAccount{
		Authority:          ledgertest.NewPublicKey(),
		Approver:           ledgertest.NewPublicKey(),
		Recipient:          ledgertest.NewPublicKey(),
		Vault:              ledgertest.NewPublicKey(),
		CliffTime:          1700086400,
		AmountPerDay:       1_000_000,
		UpdateActorMode:    UpdateActorAuthority | UpdateActorRecipient,
		EnableTransferFull: 1,
		ConfigBump:         254,
		EscrowBump:         253,
	}
}

func TestConfigAccountLayout(t *testing.T) {
	c := testConfigAccount()
	raw, err := c.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, 168)

	want := sha256.Sum256([]byte("account:ConfigAccount"))
	assert.Equal(t, want[:8], raw[:8])
	assert.Equal(t, c.Authority[:], raw[8:40])
	assert.Equal(t, c.Approver[:], raw[40:72])
	assert.Equal(t, c.Recipient[:], raw[72:104])
	assert.Equal(t, c.Vault[:], raw[104:136])
	assert.Equal(t, c.CliffTime, binary.LittleEndian.Uint64(raw[136:144]))
	assert.Equal(t, c.AmountPerDay, binary.LittleEndian.Uint64(raw[144:152]))
	assert.Equal(t, []byte{0b101, 1, 254, 253}, raw[152:156])
	assert.Equal(t, make([]byte, 12), raw[156:168])

	var got ConfigAccount
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, c, got)
}

func TestConfigAccountUnmarshalRejects(t *testing.T) {
	c := testConfigAccount()
	raw, err := c.Marshal()
	require.NoError(t, err)

	var got ConfigAccount
	assert.True(t, errors.ErrModel.Is(got.Unmarshal(raw[:100])))
	assert.True(t, errors.ErrModel.Is(got.Unmarshal(append(raw, 0))))

	other := append([]byte(nil), raw...)
	other[0] ^= 0xff
	assert.True(t, errors.ErrType.Is(got.Unmarshal(other)))
}

func TestConfigAccountValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*ConfigAccount)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*ConfigAccount) {},
		},
		"authority equals approver": {
			mutate:  func(c *ConfigAccount) { c.Approver = c.Authority },
			wantErr: ErrDuplicatePubkey,
		},
		"unknown actor bits are kept": {
			mutate: func(c *ConfigAccount) { c.UpdateActorMode = 0xff },
		},
		"transfer full above one is kept": {
			mutate: func(c *ConfigAccount) { c.EnableTransferFull = 2 },
		},
		"missing recipient": {
			mutate:  func(c *ConfigAccount) { c.Recipient = [32]byte{} },
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := testConfigAccount()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Contains(err, tc.wantErr), "%+v", err)
		})
	}
}

func TestUpdateActorMode(t *testing.T) {
	m := UpdateActorAuthority | UpdateActorApprover
	assert.True(t, m.Has(UpdateActorAuthority))
	assert.True(t, m.Has(UpdateActorApprover))
	assert.False(t, m.Has(UpdateActorRecipient))
	assert.True(t, m.Has(UpdateActorNone))
}
