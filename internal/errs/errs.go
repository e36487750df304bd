// Package errs defines the small sentinel error taxonomy shared across the
// repository components: not-found, parse, corruption, and invariant
// failures. Callers wrap these with fmt.Errorf("...: %w", errs.ErrNotFound) so
// errors.Is keeps working across package boundaries.
package errs

import "errors"

var (
	// ErrNotFound means an object id or reference does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse means malformed input: a bad hex id, an empty token, or a
	// tree object line that doesn't split into kind/id/basename.
	ErrParse = errors.New("parse error")

	// ErrCorruption means stored content didn't round-trip: a tree payload
	// failed to parse, or re-hashing it didn't reproduce its own id.
	ErrCorruption = errors.New("corrupt object")

	// ErrInvariant means a precondition of the algorithm was violated,
	// such as building against an empty target set.
	ErrInvariant = errors.New("invariant violation")

	// ErrTransient marks a failure that is logged and swallowed rather
	// than surfaced, such as a metadata cache writer error.
	ErrTransient = errors.New("transient error")
)
