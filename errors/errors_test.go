package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.root, errors.Cause(tc.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrUnauthorized, "gone"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantIs, tc.a.Is(tc.b))
		})
	}
}

func TestStdlibIsCompatible(t *testing.T) {
	err := Wrapf(ErrUnauthorized, "signer %d", 2)
	assert.True(t, stdlib.Is(err, ErrUnauthorized))
	assert.False(t, stdlib.Is(err, ErrNotFound))
}

func TestRegisterDuplicatedCodePanics(t *testing.T) {
	assert.Panics(t, func() { Register(ErrNotFound.Code(), "again") })
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestStackTraceIsAttachedOnce(t *testing.T) {
	err := Wrap(Wrap(ErrState, "inner"), "outer")
	full := fmt.Sprintf("%+v", err)
	assert.Contains(t, full, "TestStackTraceIsAttachedOnce")
	assert.Equal(t, "outer: inner: invalid state", err.Error())
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := run()
	require.Error(t, err)
	assert.True(t, ErrPanic.Is(err))
}

func TestResultInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil is success": {
			err:      nil,
			wantCode: SuccessCode,
			wantLog:  "",
		},
		"registered error keeps its code": {
			err:      Wrap(ErrUnauthorized, "approver"),
			wantCode: ErrUnauthorized.Code(),
			wantLog:  "approver: unauthorized",
		},
		"stdlib error is redacted": {
			err:      stdlib.New("secret path"),
			wantCode: internalCode,
			wantLog:  internalLog,
		},
		"stdlib error is visible in debug": {
			err:      stdlib.New("secret path"),
			debug:    true,
			wantCode: internalCode,
			wantLog:  "secret path",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ResultInfo(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, code)
			assert.True(t, strings.HasPrefix(log, tc.wantLog), log)
		})
	}
}

func TestAppend(t *testing.T) {
	assert.Nil(t, Append(nil, nil))

	single := Wrap(ErrEmpty, "name")
	assert.Equal(t, single, Append(nil, single))

	err := Append(Wrap(ErrEmpty, "name"), nil, Wrap(ErrInput, "age"))
	require.Error(t, err)
	assert.True(t, ErrEmpty.Is(err))
	assert.True(t, Contains(err, ErrInput))
	assert.False(t, Contains(err, ErrState))
	code, _ := ResultInfo(err, false)
	assert.Equal(t, ErrEmpty.Code(), code)
}
