package allocator

import (
	"io"
	"sync"
)

// Synchronized wraps an Allocator with a mutex so that it can be
// shared across goroutines. The core Allocator itself is deliberately
// unsynchronized; this decorator adds serialization around it without
// touching a single line of the split/coalesce logic, so every
// operation's invariants hold at each call boundary rather than only
// eventually.
type Synchronized struct {
	mu sync.Mutex
	a  *Allocator
}

// NewSynchronized wraps an existing Allocator.
func NewSynchronized(a *Allocator) *Synchronized {
	return &Synchronized{a: a}
}

// Allocate serializes calls to the wrapped Allocator's Allocate.
func (s *Synchronized) Allocate(size int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size)
}

// Free serializes calls to the wrapped Allocator's Free.
func (s *Synchronized) Free(addr uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(addr)
}

// Dump serializes calls to the wrapped Allocator's Dump.
func (s *Synchronized) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Dump(w)
}

// MinOrder returns the wrapped Allocator's minimum order.
func (s *Synchronized) MinOrder() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.MinOrder()
}

// MaxOrder returns the wrapped Allocator's maximum order.
func (s *Synchronized) MaxOrder() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.MaxOrder()
}

// FreeCount returns the wrapped Allocator's free-block count at order.
func (s *Synchronized) FreeCount(order int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.FreeCount(order)
}

// TotalSize returns the wrapped Allocator's total arena size.
func (s *Synchronized) TotalSize() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.TotalSize()
}
