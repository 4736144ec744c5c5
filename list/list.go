// Package list implements a generic intrusive circular doubly linked
// list, the kind described by the kernel list.h referenced from the
// original buddy allocator this package's caller is modeled on: a
// payload struct embeds a Node directly instead of being boxed by a
// separate list element, so insertion and removal never allocate.
//
// Unlike the C original, where the owning struct is recovered from a
// node pointer via container_of pointer arithmetic, Node carries a
// typed Owner reference set once at construction, since Go has no
// container_of.
package list

// Node is embedded by a payload struct (or held alongside one, with
// Owner pointed back at it) to make that struct a list member. The
// zero value is an unlinked node with a nil Owner; set Owner before
// linking the node into any Head.
type Node[T any] struct {
	next, prev *Node[T]
	head       *Head[T]
	Owner      T
}

// Linked reports whether n is currently a member of some Head.
func (n *Node[T]) Linked() bool {
	return n.head != nil
}

// Head is the sentinel of a circular doubly linked list. The zero
// value is an empty list.
type Head[T any] struct {
	root Node[T]
	len  int
}

func (h *Head[T]) lazyInit() {
	if h.root.next == nil {
		h.root.next = &h.root
		h.root.prev = &h.root
		h.root.head = h
		h.len = 0
	}
}

// Len returns the number of nodes linked into h.
func (h *Head[T]) Len() int {
	h.lazyInit()
	return h.len
}

// Empty reports whether h has no members.
func (h *Head[T]) Empty() bool {
	h.lazyInit()
	return h.root.next == &h.root
}

// PushFront links n at the head of h (LIFO insertion). n must not
// already be linked into any list.
func (h *Head[T]) PushFront(n *Node[T]) {
	h.lazyInit()
	insertAfter(n, &h.root)
	h.len++
}

// PushBack links n at the tail of h.
func (h *Head[T]) PushBack(n *Node[T]) {
	h.lazyInit()
	insertAfter(n, h.root.prev)
	h.len++
}

// Front returns the first node in h, or nil if h is empty.
func (h *Head[T]) Front() *Node[T] {
	h.lazyInit()
	if h.root.next == &h.root {
		return nil
	}
	return h.root.next
}

// Remove unlinks n from whatever list it belongs to. It is a no-op if
// n is not linked. Removal is O(1) given the node handle.
func Remove[T any](n *Node[T]) {
	if n.head == nil {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.head.len--
	n.next = nil
	n.prev = nil
	n.head = nil
}

func insertAfter[T any](n, at *Node[T]) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
	n.head = at.head
}

// Each calls fn for every node currently linked into h, in list order.
// fn must not mutate h's membership while iterating.
func (h *Head[T]) Each(fn func(*Node[T])) {
	h.lazyInit()
	for n := h.root.next; n != &h.root; n = n.next {
		fn(n)
	}
}

// Find returns the first linked node for which match reports true, or
// nil. This is the O(length) search spec-level buddy lookups use.
func (h *Head[T]) Find(match func(T) bool) *Node[T] {
	h.lazyInit()
	for n := h.root.next; n != &h.root; n = n.next {
		if match(n.Owner) {
			return n
		}
	}
	return nil
}
