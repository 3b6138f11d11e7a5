package vault

import "errors"

// Sentinel errors returned by Vault operations. Callers match them with
// errors.Is; most are wrapped with the offending uid or hint.
var (
	// ErrInvalidUser reports a uid outside 1..Capacity().
	ErrInvalidUser = errors.New("vault: invalid user id")
	// ErrCapacityExceeded reports that a user already holds the maximum
	// number of distinct hints.
	ErrCapacityExceeded = errors.New("vault: hint capacity exhausted")
	// ErrAllocation reports that storage for a vault or an entry could not
	// be obtained.
	ErrAllocation = errors.New("vault: allocation failed")
	// ErrNotFound reports an absent hint or hint-password pair.
	ErrNotFound = errors.New("vault: not found")
	// ErrStaleRef reports a Ref that no longer names a live entry.
	ErrStaleRef = errors.New("vault: entry reference is not live")
)
