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

	"go.uber.org/atomic"

	"github.com/spindlekit/spindle/internal/queue"
)

// UnboundedMailbox is a non-blocking mailbox backed by two lock-free
// multi-producer single-consumer queues, one per lane. Enqueue never blocks
// and never drops a message while the mailbox is open.
type UnboundedMailbox struct {
	user      *queue.MPSC[*envelope]
	control   *queue.MPSC[*envelope]
	closed    *atomic.Bool
	enqueuing *atomic.Int64
}

// enforce compilation error
var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox creates an instance of UnboundedMailbox.
func NewUnboundedMailbox() *UnboundedMailbox {
	return &UnboundedMailbox{
		user:      queue.NewMPSC[*envelope](),
		control:   queue.NewMPSC[*envelope](),
		closed:    atomic.NewBool(false),
		enqueuing: atomic.NewInt64(0),
	}
}

// Enqueue places a user envelope on the mailbox. It returns ErrDisconnected
// when the mailbox is closed. The context is unused: enqueueing never
// blocks.
func (m *UnboundedMailbox) Enqueue(_ context.Context, msg *envelope) error {
	m.enqueuing.Inc()
	defer m.enqueuing.Dec()
	if m.closed.Load() {
		return ErrDisconnected
	}
	m.user.Push(msg)
	return nil
}

// EnqueueControl places a control envelope on the control lane. Control
// signals are accepted even after Close.
func (m *UnboundedMailbox) EnqueueControl(msg *envelope) {
	m.control.Push(msg)
}

// Dequeue removes and returns the next envelope, control lane first, or nil
// when both lanes are empty.
func (m *UnboundedMailbox) Dequeue() *envelope {
	if msg, ok := m.control.Pop(); ok {
		return msg
	}
	if msg, ok := m.user.Pop(); ok {
		return msg
	}
	return nil
}

// Close marks the mailbox closed. Envelopes already queued remain
// dequeuable.
func (m *UnboundedMailbox) Close() {
	m.closed.Store(true)
}

// IsClosed reports whether the mailbox has been closed.
func (m *UnboundedMailbox) IsClosed() bool {
	return m.closed.Load()
}

// IsEmpty reports whether both lanes are empty.
func (m *UnboundedMailbox) IsEmpty() bool {
	return m.user.IsEmpty() && m.control.IsEmpty()
}

// Len returns the number of queued user envelopes.
func (m *UnboundedMailbox) Len() int64 {
	return m.user.Len()
}

// Settled reports whether the mailbox is closed, drained and free of
// in-flight producers. A producer that raced Close may still publish its
// envelope after the closed flag was set; Settled only turns true once that
// window is shut.
func (m *UnboundedMailbox) Settled() bool {
	return m.closed.Load() && m.enqueuing.Load() == 0 && m.IsEmpty()
}

// Dispose is a no-op for the unbounded mailbox.
func (m *UnboundedMailbox) Dispose() {}
