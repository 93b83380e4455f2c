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
	"sync"

	"github.com/spindlekit/spindle/internal/future"
	"github.com/spindlekit/spindle/log"
)

var receiveContextPool = sync.Pool{
	New: func() any {
		return new(ReceiveContext)
	},
}

// getReceiveContext retrieves a ReceiveContext from the pool and builds it
// for the given dispatch.
func getReceiveContext(ctx context.Context, pid *PID, message any, reply *future.Future, interleaved bool) *ReceiveContext {
	rctx := receiveContextPool.Get().(*ReceiveContext)
	rctx.ctx = ctx
	rctx.pid = pid
	rctx.message = message
	rctx.reply = reply
	rctx.interleaved = interleaved
	return rctx
}

// releaseReceiveContext resets the context and puts it back into the pool.
func releaseReceiveContext(rctx *ReceiveContext) {
	rctx.ctx = nil
	rctx.pid = nil
	rctx.message = nil
	rctx.reply = nil
	rctx.interleaved = false
	receiveContextPool.Put(rctx)
}

// ReceiveContext carries a single message through the actor's Receive hook.
// It is pooled: handlers must not retain it past the Receive call.
type ReceiveContext struct {
	ctx         context.Context
	pid         *PID
	message     any
	reply       *future.Future
	interleaved bool
}

// Message returns the message under dispatch.
func (c *ReceiveContext) Message() any {
	return c.message
}

// Context returns the go context attached to this dispatch.
func (c *ReceiveContext) Context() context.Context {
	return c.ctx
}

// Self returns a weak address on the running actor, suitable for the actor
// to hand out or message itself without keeping itself alive.
func (c *ReceiveContext) Self() *WeakAddress {
	return &WeakAddress{pid: c.pid}
}

// Response answers the sender of an Ask with the given value. For a Tell
// there is no reply slot and the value is dropped. Only the first call per
// message takes effect.
func (c *ReceiveContext) Response(value any) {
	if c.reply != nil {
		c.reply.Complete(value)
	}
}

// Err answers the sender of an Ask with the given error. For a Tell there is
// no reply slot and the error is dropped. Only the first call per message
// takes effect.
func (c *ReceiveContext) Err(err error) {
	if c.reply != nil {
		c.reply.Fail(err)
	}
}

// Stop requests a graceful stop of the running actor. Pending messages
// already in the mailbox are delivered before the actor stops.
func (c *ReceiveContext) Stop() {
	c.pid.requestStop(stopGracefully)
}

// Kill requests an immediate stop of the running actor. Pending messages are
// discarded and their reply slots resolve with ErrDisconnected.
func (c *ReceiveContext) Kill() {
	c.pid.requestStop(stopImmediately)
}

// Interleave switches the actor to interleaved dispatch starting with the
// next message: each handler runs as its own executor task, with synchronous
// segments still mutually exclusive.
func (c *ReceiveContext) Interleave() {
	c.pid.interleaving.Store(true)
}

// Sequential switches the actor back to sequential dispatch starting with
// the next message.
func (c *ReceiveContext) Sequential() {
	c.pid.interleaving.Store(false)
}

// Await runs fn, releasing the actor's dispatch permit while fn blocks so
// other interleaved handlers can make progress. Under sequential dispatch fn
// simply runs inline. The actor's own state must not be touched from inside
// fn.
func (c *ReceiveContext) Await(fn func()) {
	if !c.interleaved {
		fn()
		return
	}
	c.pid.permit.Release(1)
	defer func() {
		// the permit is never closed, acquisition can only fail on context
		// cancellation which background never does
		_ = c.pid.permit.Acquire(context.Background(), 1)
	}()
	fn()
}

// Logger returns the actor system's logger.
func (c *ReceiveContext) Logger() log.Logger {
	return c.pid.logger
}
