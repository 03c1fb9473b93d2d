package cash

import (
	"math"
	"testing"

	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/gconf"
	"github.com/iov-one/lockfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimumBalance(t *testing.T) {
	conf := DefaultConfiguration()

	got, err := conf.MinimumBalance(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(890880), got)

	// Size of a config account with its discriminator.
	got, err = conf.MinimumBalance(168)
	require.NoError(t, err)
	assert.Equal(t, uint64(2060160), got)

	_, err = conf.MinimumBalance(MaxDataLength + 1)
	assert.True(t, errors.ErrInput.Is(err))

	huge := Configuration{LamportsPerByteYear: math.MaxUint64, ExemptionYears: 1}
	_, err = huge.MinimumBalance(1)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestLoadConfiguration(t *testing.T) {
	db := store.MemStore()

	conf, err := LoadConfiguration(db)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), conf)

	custom := Configuration{LamportsPerByteYear: 10, ExemptionYears: 1}
	require.NoError(t, gconf.Save(db, confPkg, &custom))
	conf, err = LoadConfiguration(db)
	require.NoError(t, err)
	assert.Equal(t, custom, conf)

	err = gconf.Save(db, confPkg, &Configuration{})
	assert.True(t, errors.ErrEmpty.Is(err))
}
