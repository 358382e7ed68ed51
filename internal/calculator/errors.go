package calculator

import "errors"

// ErrInvalidArgument is returned for malformed window sizes or periods.
var ErrInvalidArgument = errors.New("invalid argument")
