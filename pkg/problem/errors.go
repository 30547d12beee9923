package problem

import "errors"

var (
	// ErrUnsupportedDataType is returned for a host type descriptor outside the type table.
	ErrUnsupportedDataType = errors.New("unsupported data type")
	// ErrMalformedValue is returned when a raw test value cannot be parsed for its kind.
	ErrMalformedValue = errors.New("malformed value")
	// ErrSignatureMismatch is returned when names, types or test inputs disagree in length.
	ErrSignatureMismatch = errors.New("signature mismatch")
)
