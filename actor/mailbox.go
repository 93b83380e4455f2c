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

import "context"

// Mailbox defines the actor's message queue. Every mailbox carries two
// lanes: a user lane for regular messages and a control lane for stop and
// lifecycle signals. Dequeue always drains the control lane first so that
// control messages overtake any backlog of user messages.
//
// Producers may call Enqueue and EnqueueControl concurrently; Dequeue is
// called only by the actor's dispatch loop.
type Mailbox interface {
	// Enqueue places a user envelope on the mailbox. It returns
	// ErrDisconnected when the mailbox is closed. A bounded mailbox blocks
	// when at capacity until space frees up, the mailbox closes or the
	// context is canceled, in which case it returns the context's error.
	Enqueue(ctx context.Context, msg *envelope) error
	// EnqueueControl places a control envelope on the control lane. The
	// control lane is never bounded and accepts signals even after Close so
	// that stop requests can always reach the dispatch loop.
	EnqueueControl(msg *envelope)
	// Dequeue removes and returns the next envelope, control lane first.
	// It returns nil when both lanes are empty. It never blocks.
	Dequeue() *envelope
	// Close marks the mailbox closed. Subsequent Enqueue calls fail with
	// ErrDisconnected; envelopes already queued remain dequeuable.
	Close()
	// IsClosed reports whether the mailbox has been closed.
	IsClosed() bool
	// IsEmpty reports whether both lanes are empty.
	IsEmpty() bool
	// Len returns the number of queued user envelopes.
	Len() int64
	// Settled reports whether the mailbox is closed, empty and has no
	// producer still inside an Enqueue call. Once settled no further
	// envelope can ever surface, so the dispatch loop can finish draining.
	Settled() bool
	// Dispose releases any resources held by the mailbox. It must only be
	// called after the mailbox is settled and fully drained.
	Dispose()
}
