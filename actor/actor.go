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
)

// Actor defines the contract an actor implementation must satisfy.
//
// Actors are lightweight, isolated units of computation that communicate
// exclusively via message passing. Each actor has its own mailbox and its
// messages are dispatched by a single loop, so an implementation mutates its
// own fields freely without any synchronization.
//
// The lifecycle of an actor follows three phases:
//  1. PreStart – setup before any message is processed
//  2. Receive – the message handling loop
//  3. PostStop – cleanup after the final message has been processed
type Actor interface {
	// PreStart is invoked once before the actor begins processing messages.
	//
	// Use this hook for one-time setup such as initializing internal state or
	// opening connections to external services. Returning an error aborts the
	// start: the actor goes straight to its terminal state without ever
	// processing a message, and any messages already queued are resolved as
	// disconnected.
	PreStart(ctx context.Context) error

	// Receive handles a message delivered to the actor's mailbox.
	//
	// Under sequential dispatch (the default) invocations never overlap, so
	// the actor's state is touched by exactly one logical operation at a
	// time. A handler that fails should report the failure through
	// ReceiveContext.Err; failures never terminate the actor.
	Receive(rctx *ReceiveContext)

	// PostStop is invoked after the actor has processed its final message and
	// is about to terminate. It is not called when PreStart failed.
	PostStop(ctx context.Context) error
}

// StopInterceptor is optionally implemented by actors that want a chance to
// cancel a graceful stop. When an actor is asked to stop gracefully the
// dispatch loop waits for in-flight handlers to complete, then consults
// OnStopping before draining; a true return puts the actor back into its
// running state. The veto is honored at most once per actor lifetime, and
// never for an immediate stop or for an actor whose owner count reached
// zero.
type StopInterceptor interface {
	OnStopping(ctx context.Context) (resume bool)
}
