package errors

import (
	"strings"
)

// Append combines given errors into a single error. Nil values are ignored.
// If only one error is left it is returned unchanged, so it keeps its code.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
			continue
		}
		res = append(res, e)
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is a list of errors reported together. Its code is the code of
// the first error, consistent with fail fast.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Code returns the code of the first error.
func (m multiErr) Code() uint32 {
	return errCode(m[0])
}

// Cause returns the first error so that Is checks follow the first failure.
func (m multiErr) Cause() error {
	return m[0]
}

// Contains returns true if any of the combined errors is of the given kind.
func Contains(err error, kind *Error) bool {
	if m, ok := err.(multiErr); ok {
		for _, e := range m {
			if kind.Is(e) {
				return true
			}
		}
		return false
	}
	return kind.Is(err)
}
