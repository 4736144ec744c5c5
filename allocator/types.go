package allocator

import (
	"unsafe"

	"github.com/mnavickas/buddyalloc/list"
	"github.com/mnavickas/buddyalloc/logging"
)

// OrderUnset is the sentinel stored in Page.Order for a page that is
// not the head of any currently-allocated block: an interior page of a
// larger block, or the head of a free block. Free-list membership,
// not the Order field, is authoritative for free blocks.
const OrderUnset int8 = -1

// Page is the per-minimum-block metadata record. Only the record at a
// block's head index carries meaningful state; interior records
// within a larger block are never written after New.
type Page struct {
	// Index is this record's own position in the page table,
	// redundant with its slice index but carried for convenience when
	// only a *Page (via the free-list node's Owner) is in hand.
	Index uint32

	// Order is the order at which this block is currently allocated,
	// or OrderUnset if this page is not a live allocation's head.
	Order int8

	link list.Node[*Page]
}

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithDebug makes Free abort via the logger's Fatal path on a detected
// double free or foreign address, instead of returning
// ErrInvalidAddress. (Out-of-arena and misaligned addresses are
// rejected with ErrInvalidAddress whether or not debug is set.) It
// also makes Allocate log a Dump-equivalent line before servicing each
// request.
func WithDebug(debug bool) Option {
	return func(a *Allocator) { a.debug = debug }
}

// WithLogger attaches a logger used for debug and fatal diagnostics.
// If omitted, a no-op logger is used, except with WithDebug(true),
// where New builds a development logger instead.
func WithLogger(l *logging.Logger) Option {
	return func(a *Allocator) { a.logger = l }
}

// Allocator is a single independent buddy-allocator arena. The zero
// value is not usable; construct one with New.
type Allocator struct {
	minOrder, maxOrder int
	base               uint64
	arena              []byte
	pages              []Page
	freeLists          []list.Head[*Page]

	debug  bool
	logger *logging.Logger
}

// pageSize returns 2^minOrder, the size in bytes of one minimum block.
func (a *Allocator) pageSize() uint64 {
	return uint64(1) << uint(a.minOrder)
}

// arenaSize returns 2^maxOrder, the size in bytes of the whole arena.
func (a *Allocator) arenaSize() uint64 {
	return uint64(1) << uint(a.maxOrder)
}

// addressOfArena reports the real starting address of the backing
// array, so returned addresses are genuine (if otherwise unusable)
// memory addresses rather than arbitrary offsets.
func addressOfArena(arena []byte) uint64 {
	if len(arena) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&arena[0])))
}
