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
	"sync"

	"github.com/spindlekit/spindle/internal/future"
)

// controlSignal identifies out-of-band control messages carried on the
// mailbox control lane. Control messages always overtake pending user
// messages.
type controlSignal int

const (
	noSignal controlSignal = iota
	// stopGracefully requests a graceful stop: pending messages are drained
	// and delivered before the actor stops.
	stopGracefully
	// stopImmediately requests an immediate stop: pending messages are
	// discarded and their replies resolved with ErrDisconnected.
	stopImmediately
	// ownersReleased notifies the dispatch loop that the last strong address
	// has been released.
	ownersReleased
)

// envelope is the unit of work queued on a mailbox. A user envelope carries
// the message payload and, for Ask, a one-shot reply future; a control
// envelope carries only its signal.
type envelope struct {
	message any
	reply   *future.Future
	signal  controlSignal
}

var envelopePool = sync.Pool{
	New: func() any {
		return new(envelope)
	},
}

// getEnvelope retrieves an envelope from the pool.
func getEnvelope() *envelope {
	return envelopePool.Get().(*envelope)
}

// releaseEnvelope resets the envelope and puts it back into the pool. The
// caller must not touch the envelope afterwards; the reply future, if any,
// must have been captured separately beforehand.
func releaseEnvelope(e *envelope) {
	e.message = nil
	e.reply = nil
	e.signal = noSignal
	envelopePool.Put(e)
}

// resolveDiscarded settles the reply slot of a discarded envelope with
// ErrDisconnected. It is a no-op for envelopes without a reply slot or whose
// reply was already resolved.
func (e *envelope) resolveDiscarded() {
	if e.reply != nil {
		e.reply.Fail(ErrDisconnected)
	}
}
