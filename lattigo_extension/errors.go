package lattigoextension

import "errors"

// Failure kinds shared by every encrypted routine of the module.
// Callers match them with errors.Is; none of them is worth retrying.
var (
	// ErrInvalidArgument reports a malformed dimension, offset or rotation amount.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidDegree reports a polynomial or power degree smaller than one.
	ErrInvalidDegree = errors.New("invalid degree")
	// ErrLevelExhausted reports an operation needing more levels than the operand has left.
	ErrLevelExhausted = errors.New("level exhausted")
	// ErrDimensionMismatch reports operands whose sizes or levels disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
