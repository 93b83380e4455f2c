/*
 * MIT License
 *
 * Copyright (c) 2024-2026 Spindle Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package queue provides an intrusive, lock-free Multi-Producer
// Single-Consumer queue used as the building block for mailbox lanes and
// event stream buffers.
package queue

import (
	"sync/atomic"
)

// node is a single queue entry
type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// MPSC is an unbounded FIFO queue safe for many concurrent producers and
// exactly one consumer. Producers only touch tail, the consumer only touches
// head; both sit on separate cache lines to avoid false sharing.
type MPSC[T any] struct {
	head   atomic.Pointer[node[T]] // consumer only
	_pad1  [64]byte
	tail   atomic.Pointer[node[T]] // producers only
	_pad2  [64]byte
	length atomic.Int64
}

// NewMPSC creates an empty queue. The queue starts with a stub node so
// producers can append by swapping tail and linking through the previous
// node.
func NewMPSC[T any]() *MPSC[T] {
	stub := new(node[T])
	q := new(MPSC[T])
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Push appends the given value. Never blocks; safe for concurrent producers.
func (q *MPSC[T]) Push(value T) {
	n := &node[T]{}
	n.value = value
	prev := q.tail.Swap(n)
	prev.next.Store(n)
	q.length.Add(1)
}

// Pop removes and returns the oldest value. It reports false when the queue
// is empty. Must be called from a single consumer goroutine.
func (q *MPSC[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return zero, false
	}

	q.head.Store(next)
	value := next.value
	next.value = zero
	q.length.Add(-1)
	return value, true
}

// Len returns a best-effort snapshot of the queue length.
func (q *MPSC[T]) Len() int64 {
	return q.length.Load()
}

// IsEmpty reports whether the queue has no entries. O(1) and safe under
// concurrent producers.
func (q *MPSC[T]) IsEmpty() bool {
	head := q.head.Load()
	return head.next.Load() == nil
}
