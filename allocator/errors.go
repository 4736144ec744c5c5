package allocator

import "errors"

var (
	// ErrInvalidSize is returned when Allocate is called with a
	// non-positive size.
	ErrInvalidSize = errors.New("buddyalloc: requested size must be positive")

	// ErrOutOfMemory is returned when no free block at or above the
	// requested order exists, including when the request itself
	// exceeds the arena's maximum order.
	ErrOutOfMemory = errors.New("buddyalloc: no free block satisfies the request")

	// ErrInvalidAddress is returned by the defensive checks in Free for
	// a caller-precondition violation: a foreign address, an address
	// outside the arena, a misaligned address, or (in debug mode,
	// where it is instead fatal) a double free.
	ErrInvalidAddress = errors.New("buddyalloc: address violates allocator preconditions")
)
