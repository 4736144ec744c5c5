package allocator

import (
	"fmt"
	"io"

	"github.com/mnavickas/buddyalloc/list"
	"github.com/mnavickas/buddyalloc/logging"
)

// maxArenaOrder bounds how large an arena New will actually back with
// real bytes; it exists only so a mistyped --max-order flag on the CLI
// doesn't try to allocate a terabyte-scale []byte. It has no bearing
// on the algorithm itself, which places no such ceiling on the order.
const maxArenaOrder = 30

// New constructs an Allocator managing an arena of 2^maxOrder bytes
// divided into pages of 2^minOrder bytes: 1 <= minOrder <= maxOrder <=
// maxArenaOrder (30). The arena is owned entirely by the returned value, so multiple
// independent Allocators can coexist in one process.
func New(minOrder, maxOrder int, opts ...Option) (*Allocator, error) {
	if minOrder < 1 {
		return nil, fmt.Errorf("buddyalloc: minOrder must be >= 1, got %d", minOrder)
	}
	if maxOrder < minOrder {
		return nil, fmt.Errorf("buddyalloc: maxOrder (%d) must be >= minOrder (%d)", maxOrder, minOrder)
	}
	if maxOrder > maxArenaOrder {
		return nil, fmt.Errorf("buddyalloc: maxOrder %d exceeds the %d-order cap on a backed arena", maxOrder, maxArenaOrder)
	}

	a := &Allocator{minOrder: minOrder, maxOrder: maxOrder}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		// Debug mode's Fatalf path must never abort silently, so a
		// debug allocator without an explicit WithLogger still gets
		// one that actually writes instead of a no-op.
		if a.debug {
			a.logger = logging.New(true)
		} else {
			a.logger = logging.Nop()
		}
	}

	a.arena = make([]byte, uint64(1)<<uint(maxOrder))
	a.base = addressOfArena(a.arena)

	nPages := uint32(1) << uint(maxOrder-minOrder)
	a.pages = make([]Page, nPages)
	for i := range a.pages {
		a.pages[i].Index = uint32(i)
		a.pages[i].Order = OrderUnset
		a.pages[i].link.Owner = &a.pages[i]
	}

	a.freeLists = make([]list.Head[*Page], maxOrder+1)
	// The whole arena starts as a single free block at maxOrder,
	// headed by page 0.
	a.freeLists[maxOrder].PushFront(&a.pages[0].link)

	return a, nil
}

// MinOrder returns the allocator's minimum block order.
func (a *Allocator) MinOrder() int { return a.minOrder }

// MaxOrder returns the allocator's maximum block order (the whole
// arena's order).
func (a *Allocator) MaxOrder() int { return a.maxOrder }

// TotalSize returns the arena's total size in bytes, 2^MaxOrder.
func (a *Allocator) TotalSize() uint64 { return a.arenaSize() }

// FreeCount returns the number of free blocks currently linked at the
// given order. It is read-only and safe to call at any time.
func (a *Allocator) FreeCount(order int) int {
	if order < a.minOrder || order > a.maxOrder {
		return 0
	}
	return a.freeLists[order].Len()
}

// Allocate services a request for size bytes, returning the address of
// a block of order max(MinOrder, ceil(log2(size))).
func (a *Allocator) Allocate(size int64) (uint64, error) {
	requested, err := requestedOrder(size, a.minOrder, a.maxOrder)
	if err != nil {
		return 0, err
	}

	if a.debug {
		a.logger.Debugf("allocate: requested %d bytes -> order %d; free-list snapshot: %s", size, requested, a.snapshot())
	}

	// Step 2: find the smallest non-empty free list at or above the
	// requested order.
	found := -1
	for i := requested; i <= a.maxOrder; i++ {
		if !a.freeLists[i].Empty() {
			found = i
			break
		}
	}
	if found == -1 {
		return 0, ErrOutOfMemory
	}

	// Step 3: remove the head of that free list.
	node := a.freeLists[found].Front()
	list.Remove(node)
	page := node.Owner
	addr := pageAddr(a.base, page.Index, a.minOrder)

	// Step 4: iteratively split from found down to requested. A bounded
	// loop avoids recursion depth tied to maxOrder-requested.
	for order := found - 1; order >= requested; order-- {
		rightAddr := addr + (uint64(1) << uint(order))
		rightPage := &a.pages[pageIndex(a.base, rightAddr, a.minOrder)]
		rightPage.Order = OrderUnset
		a.freeLists[order].PushFront(&rightPage.link)
	}

	// Step 5: the left half (addr) becomes the allocated block.
	page.Order = int8(requested)
	return addr, nil
}

// Free reclaims the block previously returned by Allocate at addr,
// coalescing it with its free buddy at each order until a non-free
// buddy is found or MaxOrder is reached.
//
// Freeing an address not obtained from Allocate, or freeing it twice,
// is a caller bug; the checks below catch the common cases of it
// (out-of-arena, misaligned, or not currently allocated).
func (a *Allocator) Free(addr uint64) error {
	if addr < a.base || addr >= a.base+a.arenaSize() {
		return fmt.Errorf("%w: address %#x outside arena [%#x, %#x)", ErrInvalidAddress, addr, a.base, a.base+a.arenaSize())
	}
	if (addr-a.base)&(a.pageSize()-1) != 0 {
		return fmt.Errorf("%w: address %#x is not aligned to the %d-byte page size", ErrInvalidAddress, addr, a.pageSize())
	}

	index := pageIndex(a.base, addr, a.minOrder)
	page := &a.pages[index]
	order := int(page.Order)

	if order < a.minOrder || order > a.maxOrder {
		if a.debug {
			a.logger.Fatalf("double free or foreign address: addr=%#x page=%d order-field=%d", addr, index, page.Order)
		}
		return fmt.Errorf("%w: address %#x is not currently allocated", ErrInvalidAddress, addr)
	}

	page.Order = OrderUnset

	for {
		if order == a.maxOrder {
			a.freeLists[order].PushFront(&page.link)
			return nil
		}

		buddyAddr := buddyOf(a.base, addr, order)
		buddyNode := a.freeLists[order].Find(func(p *Page) bool {
			return pageAddr(a.base, p.Index, a.minOrder) == buddyAddr
		})
		if buddyNode == nil {
			a.freeLists[order].PushFront(&page.link)
			return nil
		}

		list.Remove(buddyNode)
		if addr > buddyAddr {
			addr = buddyAddr
		}
		index = pageIndex(a.base, addr, a.minOrder)
		page = &a.pages[index]
		order++
	}
}

// Dump writes, for each order from MinOrder to MaxOrder, a
// "count:sizeK" pair separated by single spaces and terminated by a
// newline.
func (a *Allocator) Dump(w io.Writer) error {
	for order := a.minOrder; order <= a.maxOrder; order++ {
		sizeKiB := (uint64(1) << uint(order)) / 1024
		if sizeKiB == 0 {
			sizeKiB = 1
		}
		if _, err := fmt.Fprintf(w, "%d:%dK", a.FreeCount(order), sizeKiB); err != nil {
			return err
		}
		if order != a.maxOrder {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// snapshot renders the same counts Dump does, to a string, for debug
// logging before each allocation.
func (a *Allocator) snapshot() string {
	var b []byte
	for order := a.minOrder; order <= a.maxOrder; order++ {
		if order != a.minOrder {
			b = append(b, ' ')
		}
		b = fmt.Appendf(b, "%d:%dK", a.FreeCount(order), (uint64(1)<<uint(order))/1024)
	}
	return string(b)
}
