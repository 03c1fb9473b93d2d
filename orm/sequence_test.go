package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/lockfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	// Cases run in order, later ones continue earlier sequences.
	cases := []struct {
		name       string
		bucket     string
		seq        string
		init       int64
		increments int64
	}{
		{"fresh sequence", "events", "id", 0, 22},
		{"another fresh sequence", "events", "seq", 0, 11},
		{"continue first sequence", "events", "id", 22, 18},
		{"different bucket", "nonces", "id", 0, 77},
		{"continue second sequence", "events", "seq", 11, 248},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.seq)
			_, orig, err := s.Latest(db)
			require.NoError(t, err)

			var val int64
			for i := int64(0); i < tc.increments; i++ {
				val, err = s.NextInt(db)
				require.NoError(t, err)
			}
			assert.Equal(t, tc.init+tc.increments, val)

			// make sure final value is bigger than original value
			// if we use the raw bytes to index stuff
			_, last, err := s.Latest(db)
			require.NoError(t, err)
			assert.Equal(t, 1, bytes.Compare(last, orig))
		})
	}
}
