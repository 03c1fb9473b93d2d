package lockfund

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iov-one/lockfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    UnixTime
		wantErr *errors.Error
	}{
		"number": {
			raw:  "1600000000",
			want: 1600000000,
		},
		"string time": {
			raw:  `"2020-09-13T12:26:40Z"`,
			want: 1600000000,
		},
		"negative": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"garbage": {
			raw:     `"yesterday"`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnixTimeAddSeconds(t *testing.T) {
	got, err := UnixTime(100).AddSeconds(86400)
	require.NoError(t, err)
	assert.Equal(t, uint64(86500), got)

	_, err = UnixTime(100).AddSeconds(math.MaxUint64)
	assert.True(t, errors.ErrOverflow.Is(err))

	assert.Equal(t, UnixTime(160), UnixTime(100).Add(time.Minute))
	assert.True(t, UnixTime(0).IsZero())
	assert.True(t, errors.ErrState.Is(UnixTime(-5).Validate()))
}
