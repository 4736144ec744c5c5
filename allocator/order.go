package allocator

// requestedOrder computes the order needed to satisfy a byte size:
// max(minOrder, ceil(log2(size))), returning ErrOutOfMemory if no
// order up to maxOrder can satisfy it.
func requestedOrder(size int64, minOrder, maxOrder int) (int, error) {
	if size <= 0 {
		return 0, ErrInvalidSize
	}
	order := minOrder
	for (int64(1) << uint(order)) < size {
		order++
		if order > 63 {
			return 0, ErrOutOfMemory
		}
	}
	if order > maxOrder {
		return 0, ErrOutOfMemory
	}
	return order, nil
}

// pageIndex returns the page-table index of addr.
func pageIndex(base, addr uint64, minOrder int) uint32 {
	return uint32((addr - base) >> uint(minOrder))
}

// pageAddr is the inverse of pageIndex.
func pageAddr(base uint64, index uint32, minOrder int) uint64 {
	return base + uint64(index)<<uint(minOrder)
}

// buddyOf returns the buddy address of addr at order:
// base + ((addr - base) XOR 2^order).
func buddyOf(base, addr uint64, order int) uint64 {
	return base + ((addr - base) ^ (uint64(1) << uint(order)))
}
