// Package allocator implements a binary buddy allocator over a fixed,
// statically sized arena: requests are serviced by locating (or
// constructing through repeated halving) the smallest power-of-two
// block that satisfies them, and freed blocks are coalesced with their
// buddy until coalescence is no longer possible.
//
// The allocator is single-threaded and not reentrant, matching the
// original algorithm's contract; callers that need to share one
// Allocator across goroutines should wrap it in Synchronized instead
// of adding locking here.
package allocator
