package client

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "lockfund-keys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	key := ledgertest.KeyFromSeed("key file")
	path := filepath.Join(dir, "id.json")
	require.NoError(t, WriteKey(path, key))
	assert.Error(t, WriteKey(path, key), "must not overwrite")

	loaded, err := LoadKey(path)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	b58 := filepath.Join(dir, "id.b58")
	require.NoError(t, ioutil.WriteFile(b58, []byte(base58.Encode(key)+"\n"), 0600))
	loaded, err = LoadKey(b58)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	_, err = LoadKey(filepath.Join(dir, "missing"))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestParseKeyRejects(t *testing.T) {
	key := ledgertest.KeyFromSeed("broken")
	tampered := append([]byte(nil), key...)
	tampered[63] ^= 1

	cases := map[string][]byte{
		"empty":              nil,
		"short":              []byte("[1,2,3]"),
		"out of range":       []byte("[256]"),
		"invalid base58":     []byte("0OIl"),
		"public key differs": []byte(base58.Encode(tampered)),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKey(raw)
			assert.Error(t, err)
		})
	}
}

func TestByteArray(t *testing.T) {
	raw := EncodeByteArray([]byte{0, 1, 255})
	assert.Equal(t, "[0,1,255]", string(raw))
	b, err := DecodeByteArray(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 255}, b)

	_, err = DecodeByteArray([]byte(`"AAE="`))
	assert.True(t, errors.ErrInput.Is(err))
	_, err = DecodeByteArray([]byte(`[-1]`))
	assert.True(t, errors.ErrInput.Is(err))
}
