package main

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/x/escrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommands(t *testing.T) {
	w := newWorkdir(t)

	// Reading a missing file returns the defaults.
	out, err := runCmd(t, cmdConfigGet, "", "-config", w.conf)
	require.NoError(t, err)
	var got Config
	_, err = toml.Decode(out, &got)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), got)

	_, err = runCmd(t, cmdConfigInit, "", "-config", w.conf)
	require.NoError(t, err)
	_, err = runCmd(t, cmdConfigInit, "", "-config", w.conf)
	assert.Error(t, err, "must not overwrite")

	program := ledgertest.NewPublicKey()
	_, err = runCmd(t, cmdConfigSet, "",
		"-config", w.conf,
		"-rpc-url", "http://localhost:8899",
		"-approver", "/keys/approver.json",
		"-program", program.String(),
	)
	require.NoError(t, err)

	conf, err := LoadConfig(w.conf)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", conf.RPCURL)
	assert.Equal(t, "/keys/approver.json", conf.ApproverPath)
	assert.Equal(t, program.String(), conf.ProgramID)
	// Values without a flag are kept.
	assert.Equal(t, DefaultConfig().AuthorityPath, conf.AuthorityPath)

	_, err = runCmd(t, cmdConfigSet, "", "-config", w.conf, "-program", "not a key")
	assert.Error(t, err)
	conf, err = LoadConfig(w.conf)
	require.NoError(t, err)
	assert.Equal(t, program.String(), conf.ProgramID)

	_, err = runCmd(t, cmdConfigSet, "", "-config", w.conf, "-program", escrow.DefaultProgramID.String())
	require.NoError(t, err)
}
