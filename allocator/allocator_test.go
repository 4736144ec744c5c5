package allocator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAllocator builds a 4KB-page, 1MiB arena (MinOrder=12,
// MaxOrder=20), the size used by most of the scenarios below.
func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a, err := New(12, 20)
	require.NoError(t, err)
	return a
}

func dumpString(t *testing.T, a *Allocator) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, a.Dump(&b))
	return strings.TrimRight(b.String(), "\n")
}

func TestExactOrderHit(t *testing.T) {
	a := newTestAllocator(t)

	addr, err := a.Allocate(1024 * 1024)
	require.NoError(t, err)
	assert.Equal(t, a.base, addr)

	_, err = a.Allocate(4 * 1024)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	require.NoError(t, a.Free(addr))
	assert.Equal(t, "0:4K 0:8K 0:16K 0:32K 0:64K 0:128K 0:256K 0:512K 1:1024K", dumpString(t, a))
}

func TestSingleSplitChain(t *testing.T) {
	a := newTestAllocator(t)

	addr, err := a.Allocate(60 * 1024)
	require.NoError(t, err)

	for order := 16; order <= 19; order++ {
		assert.Equalf(t, 1, a.FreeCount(order), "order %d", order)
	}
	assert.Equal(t, 0, a.FreeCount(20))
	assert.Equal(t, "0:4K 0:8K 0:16K 0:32K 1:64K 1:128K 1:256K 1:512K 0:1024K", dumpString(t, a))

	require.NoError(t, a.Free(addr))
}

func TestCoalesceAfterSplit(t *testing.T) {
	a := newTestAllocator(t)

	addr, err := a.Allocate(60 * 1024)
	require.NoError(t, err)

	require.NoError(t, a.Free(addr))

	assert.Equal(t, 1, a.FreeCount(20))
	for order := 12; order <= 19; order++ {
		assert.Equalf(t, 0, a.FreeCount(order), "order %d", order)
	}
}

func TestLeftRightBuddyIndependence(t *testing.T) {
	run := func(t *testing.T, freeFirst func(a *Allocator, a1, a2 uint64)) {
		a := newTestAllocator(t)
		a1, err := a.Allocate(64 * 1024)
		require.NoError(t, err)
		a2, err := a.Allocate(64 * 1024)
		require.NoError(t, err)

		assert.Less(t, a1, a2)
		assert.Equal(t, uint64(64*1024), a2-a1)

		freeFirst(a, a1, a2)

		assert.Equal(t, 1, a.FreeCount(20))
		for order := 12; order <= 19; order++ {
			assert.Equalf(t, 0, a.FreeCount(order), "order %d", order)
		}
	}

	t.Run("forward", func(t *testing.T) {
		run(t, func(a *Allocator, a1, a2 uint64) {
			require.NoError(t, a.Free(a1))
			require.NoError(t, a.Free(a2))
		})
	})
	t.Run("reverse", func(t *testing.T) {
		run(t, func(a *Allocator, a1, a2 uint64) {
			require.NoError(t, a.Free(a2))
			require.NoError(t, a.Free(a1))
		})
	})
}

func TestFragmentationFailureAtArenaCapacity(t *testing.T) {
	a := newTestAllocator(t) // 1 MiB arena, 256 pages of 4KiB

	addrs := make([]uint64, 0, 257)
	for i := 0; i < 256; i++ {
		addr, err := a.Allocate(4 * 1024)
		require.NoErrorf(t, err, "allocation %d", i)
		addrs = append(addrs, addr)
	}

	_, err := a.Allocate(4 * 1024)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	for _, addr := range addrs {
		require.NoError(t, a.Free(addr))
	}
	assert.Equal(t, 1, a.FreeCount(20))
}

func TestFragmentationFailureAtHalfArena(t *testing.T) {
	a, err := New(12, 19) // 512 KiB arena, 128 pages of 4KiB
	require.NoError(t, err)

	addrs := make([]uint64, 0, 129)
	for i := 0; i < 128; i++ {
		addr, aerr := a.Allocate(4 * 1024)
		require.NoErrorf(t, aerr, "allocation %d", i)
		addrs = append(addrs, addr)
	}

	_, err = a.Allocate(4 * 1024)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	for _, addr := range addrs {
		require.NoError(t, a.Free(addr))
	}
	assert.Equal(t, 1, a.FreeCount(19))
}

func TestInvalidSize(t *testing.T) {
	a := newTestAllocator(t)

	before := dumpString(t, a)

	_, err := a.Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = a.Allocate(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	assert.Equal(t, before, dumpString(t, a))
}

func TestSizeLargerThanArenaIsOutOfMemoryRegardlessOfFragmentation(t *testing.T) {
	a := newTestAllocator(t)
	_, err := a.Allocate(2 * 1024 * 1024)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestPowerOfTwoSizeDoesNotRoundUpAnOrder(t *testing.T) {
	a := newTestAllocator(t)
	addr, err := a.Allocate(64 * 1024)
	require.NoError(t, err)

	idx := pageIndex(a.base, addr, a.minOrder)
	assert.EqualValues(t, 16, a.pages[idx].Order)
}

func TestNoSplitWhenExactOrderAvailable(t *testing.T) {
	a := newTestAllocator(t)
	a1, err := a.Allocate(1024 * 1024)
	require.NoError(t, err)
	require.NoError(t, a.Free(a1))

	addr, err := a.Allocate(1024 * 1024)
	require.NoError(t, err)
	assert.Equal(t, a.base, addr)
	for order := 12; order <= 19; order++ {
		assert.Equal(t, 0, a.FreeCount(order))
	}
}

func TestFreeingInvalidAddressIsReported(t *testing.T) {
	a := newTestAllocator(t)
	err := a.Free(a.base + a.arenaSize() + 4096)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFreeingMisalignedAddressIsReported(t *testing.T) {
	a := newTestAllocator(t)
	err := a.Free(a.base + 1)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFreeingUnallocatedPageIsReported(t *testing.T) {
	a := newTestAllocator(t)
	// Page 0 is part of the single free MaxOrder block, never handed
	// out by Allocate, so its order field is OrderUnset.
	err := a.Free(a.base)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFullyFreeYieldsSingleMaxOrderBlock(t *testing.T) {
	a := newTestAllocator(t)

	sizes := []int64{4 * 1024, 8 * 1024, 16 * 1024, 32 * 1024, 64 * 1024, 5 * 1024, 200 * 1024}
	addrs := make([]uint64, 0, len(sizes))
	for _, s := range sizes {
		addr, err := a.Allocate(s)
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	for _, addr := range addrs {
		require.NoError(t, a.Free(addr))
	}

	assert.Equal(t, 1, a.FreeCount(20))
	for order := 12; order <= 19; order++ {
		assert.Equal(t, 0, a.FreeCount(order))
	}
}

func TestNewRejectsBadOrders(t *testing.T) {
	_, err := New(0, 20)
	assert.Error(t, err)

	_, err = New(20, 12)
	assert.Error(t, err)

	_, err = New(12, maxArenaOrder+1)
	assert.Error(t, err)
}

func TestSynchronizedDelegates(t *testing.T) {
	a, err := New(12, 20)
	require.NoError(t, err)
	s := NewSynchronized(a)

	addr, err := s.Allocate(4096)
	require.NoError(t, err)
	require.NoError(t, s.Free(addr))
	assert.Equal(t, 1, s.FreeCount(20))
	assert.Equal(t, uint64(1)<<20, s.TotalSize())
}
