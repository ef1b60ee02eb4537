package honeytable

import "github.com/pkg/errors"

// DatabaseError wraps an I/O failure encountered while reading or writing a
// table. It is fatal: the cursor does not retry.
type DatabaseError struct {
	cause error
}

func (e *DatabaseError) Error() string { return "honeytable: " + e.cause.Error() }

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *DatabaseError) Unwrap() error { return e.cause }

func newDatabaseError(msg string, cause error) error {
	// A cause that is already one of this package's own typed errors has
	// already been classified correctly by whoever produced it (e.g.
	// ByteFile.ReadFull returning a DatabaseCorruptError for a short read);
	// re-wrapping it here would downgrade a corruption into a plain
	// DatabaseError, since pkg/errors.Wrap exposes Cause(), not Unwrap(), so
	// the result's dynamic type would no longer be the original kind.
	switch cause.(type) {
	case *DatabaseError, *DatabaseCorruptError, *InvalidArgumentError, *SerialisationError:
		return cause
	}
	if cause == nil {
		cause = errors.New(msg)
	} else {
		cause = errors.Wrap(cause, msg)
	}
	return &DatabaseError{cause: cause}
}

// DatabaseCorruptError reports malformed table structure: an unknown index
// type, a mismatched VarInt terminator, a position past root where an entry
// was expected, or a decompression that failed to complete on a full chunk.
type DatabaseCorruptError struct {
	cause error
}

func (e *DatabaseCorruptError) Error() string { return "honeytable: corrupt: " + e.cause.Error() }

func (e *DatabaseCorruptError) Unwrap() error { return e.cause }

func newCorruptError(msg string) error {
	return &DatabaseCorruptError{cause: errors.New(msg)}
}

// InvalidArgumentError reports a caller error such as an empty key passed to
// Find, or an empty name passed to a registry Register call.
type InvalidArgumentError struct {
	cause error
}

func (e *InvalidArgumentError) Error() string { return "honeytable: invalid argument: " + e.cause.Error() }

func (e *InvalidArgumentError) Unwrap() error { return e.cause }

func newInvalidArgumentError(msg string) error {
	return &InvalidArgumentError{cause: errors.New(msg)}
}

// NewInvalidArgumentError exposes the invalid-argument error kind to other
// packages in this module (registry) that reuse spec.md §7's error
// taxonomy for their own caller-error cases (an empty registration name).
func NewInvalidArgumentError(msg string) error {
	return newInvalidArgumentError(msg)
}

// SerialisationError reports trailing bytes left over after deserialising a
// fixed-size payload.
type SerialisationError struct {
	cause error
}

func (e *SerialisationError) Error() string { return "honeytable: serialisation: " + e.cause.Error() }

func (e *SerialisationError) Unwrap() error { return e.cause }

func newSerialisationError(msg string) error {
	return &SerialisationError{cause: errors.New(msg)}
}
