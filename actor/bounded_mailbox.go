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

package actor

import (
	"context"
	"time"

	workiva "github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	"github.com/spindlekit/spindle/internal/queue"
)

// BoundedMailbox is a blocking mailbox with a fixed capacity on the user
// lane, backed by a pre-allocated ring buffer. Enqueue blocks when the
// mailbox is full until the dispatch loop frees a slot, applying natural
// backpressure to fast senders. The control lane stays unbounded so stop
// signals always get through.
//
// Capacity is enforced by a token gate in front of the ring rather than by
// the ring itself: the MPMC ring algorithm needs at least two slots, so the
// ring is sized max(2, capacity) and a producer must take a token before it
// may publish. Tokens double as the blocking point, which lets a parked
// producer also observe context cancellation and Dispose.
type BoundedMailbox struct {
	buffer    *workiva.RingBuffer
	control   *queue.MPSC[*envelope]
	slots     chan struct{}
	disposed  chan struct{}
	closed    *atomic.Bool
	released  *atomic.Bool
	enqueuing *atomic.Int64
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates an instance of BoundedMailbox with the given
// capacity. A capacity below one is raised to one.
func NewBoundedMailbox(capacity uint64) *BoundedMailbox {
	if capacity < 1 {
		capacity = 1
	}
	ringSize := capacity
	if ringSize < 2 {
		ringSize = 2
	}
	slots := make(chan struct{}, capacity)
	for i := uint64(0); i < capacity; i++ {
		slots <- struct{}{}
	}
	return &BoundedMailbox{
		buffer:    workiva.NewRingBuffer(ringSize),
		control:   queue.NewMPSC[*envelope](),
		slots:     slots,
		disposed:  make(chan struct{}),
		closed:    atomic.NewBool(false),
		released:  atomic.NewBool(false),
		enqueuing: atomic.NewInt64(0),
	}
}

// Enqueue places a user envelope on the mailbox, blocking while the mailbox
// is full. It returns ErrDisconnected when the mailbox is closed and the
// context's error when ctx is canceled before a slot frees up.
func (m *BoundedMailbox) Enqueue(ctx context.Context, msg *envelope) error {
	m.enqueuing.Inc()
	defer m.enqueuing.Dec()
	if m.closed.Load() {
		return ErrDisconnected
	}
	select {
	case <-m.slots:
	case <-m.disposed:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
	if m.closed.Load() {
		// closed while parked; the envelope was never accepted
		m.slots <- struct{}{}
		return ErrDisconnected
	}
	if err := m.buffer.Put(msg); err != nil {
		m.slots <- struct{}{}
		return ErrDisconnected
	}
	return nil
}

// EnqueueControl places a control envelope on the control lane. Control
// signals are accepted even after Close.
func (m *BoundedMailbox) EnqueueControl(msg *envelope) {
	m.control.Push(msg)
}

// Dequeue removes and returns the next envelope, control lane first, or nil
// when both lanes are empty.
func (m *BoundedMailbox) Dequeue() *envelope {
	if msg, ok := m.control.Pop(); ok {
		return msg
	}
	item, err := m.buffer.Poll(time.Nanosecond)
	if err != nil {
		return nil
	}
	// hand the freed slot back to the next parked producer
	m.slots <- struct{}{}
	return item.(*envelope)
}

// Close marks the mailbox closed. Envelopes already queued remain
// dequeuable; producers parked on the slot gate are released as the
// dispatch loop drains.
func (m *BoundedMailbox) Close() {
	m.closed.Store(true)
}

// IsClosed reports whether the mailbox has been closed.
func (m *BoundedMailbox) IsClosed() bool {
	return m.closed.Load()
}

// IsEmpty reports whether both lanes are empty.
func (m *BoundedMailbox) IsEmpty() bool {
	return m.buffer.Len() == 0 && m.control.IsEmpty()
}

// Len returns the number of queued user envelopes.
func (m *BoundedMailbox) Len() int64 {
	return int64(m.buffer.Len())
}

// Settled reports whether the mailbox is closed, drained and free of
// in-flight producers, including producers parked on the slot gate.
func (m *BoundedMailbox) Settled() bool {
	return m.closed.Load() && m.enqueuing.Load() == 0 && m.IsEmpty()
}

// Dispose releases the ring buffer, waking any producer still parked on the
// slot gate.
func (m *BoundedMailbox) Dispose() {
	if m.released.CompareAndSwap(false, true) {
		close(m.disposed)
	}
	m.buffer.Dispose()
}
