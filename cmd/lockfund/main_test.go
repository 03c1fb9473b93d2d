package main

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/app"
	"github.com/iov-one/lockfund/client"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/stretchr/testify/require"
)

// workdir is a temporary directory holding the configuration, keys and the
// local ledger of a test.
type workdir struct {
	dir  string
	conf string
}

func newWorkdir(t *testing.T) *workdir {
	t.Helper()
	dir, err := ioutil.TempDir("", "lockfund-cli")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return &workdir{dir: dir, conf: filepath.Join(dir, "config.toml")}
}

func (w *workdir) path(name string) string {
	return filepath.Join(w.dir, name)
}

// writeKey stores a deterministic key and returns it.
func (w *workdir) writeKey(t *testing.T, name string) solana.PrivateKey {
	t.Helper()
	key := ledgertest.KeyFromSeed(name)
	require.NoError(t, client.WriteKey(w.path(name+".json"), key))
	return key
}

// writeGenesis creates a genesis file funding given accounts.
func (w *workdir) writeGenesis(t *testing.T, funded ...solana.PublicKey) string {
	t.Helper()
	var accounts []cash.GenesisAccount
	for _, addr := range funded {
		accounts = append(accounts, cash.GenesisAccount{Address: addr, Lamports: 50_000_000})
	}
	raw, err := json.Marshal(accounts)
	require.NoError(t, err)
	gen, err := json.Marshal(app.Genesis{
		ChainID:  "cli-test",
		AppState: lockfund.Options{"cash": raw},
	})
	require.NoError(t, err)
	path := w.path("genesis.json")
	require.NoError(t, ioutil.WriteFile(path, gen, 0600))
	return path
}

// runCmd executes a command and returns its output.
func runCmd(t *testing.T, cmd func(io.Reader, io.Writer, []string) error, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cmd(strings.NewReader(input), &out, args)
	return out.String(), err
}

func TestAvailableCmds(t *testing.T) {
	cmds := availableCmds()
	require.Len(t, cmds, len(commands))
	for i := 1; i < len(cmds); i++ {
		require.True(t, cmds[i-1] < cmds[i], "not sorted: %v", cmds)
	}
}

func writeFile(path, content string) error {
	return ioutil.WriteFile(path, []byte(content), 0600)
}
