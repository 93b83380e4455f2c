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

	"go.uber.org/atomic"
)

// Address is a strong handle on an actor. Each live Address contributes one
// unit to the actor's owner count: when the last strong address is released
// the actor drains its mailbox and stops on its own. Address methods are
// safe for concurrent use, but each Address counts as a single owner no
// matter how many goroutines share it.
type Address struct {
	pid      *PID
	released *atomic.Bool
}

// newAddress wraps the pid in a fresh strong handle. The caller must have
// already accounted for the handle in the pid's owner count.
func newAddress(pid *PID) *Address {
	return &Address{
		pid:      pid,
		released: atomic.NewBool(false),
	}
}

// Tell sends the given message without waiting for a response. It blocks
// only until the mailbox accepts the message, which for a bounded mailbox at
// capacity means waiting for the dispatch loop to free a slot. Canceling the
// context releases a blocked send with the context's error.
func (x *Address) Tell(ctx context.Context, message any) error {
	if x.pid.isStopped() {
		return ErrDisconnected
	}
	if x.released.Load() {
		return ErrAlreadyReleased
	}
	return x.pid.tell(ctx, message)
}

// Ask sends the given message and blocks until the actor responds, the
// timeout elapses or the context is canceled. The timeout covers the whole
// exchange, including time spent waiting for a full bounded mailbox to
// accept the message. Exactly one outcome is observed per call: the
// handler's response or error, ErrRequestTimeout, ErrDisconnected when the
// actor stops before answering, or the context's error.
func (x *Address) Ask(ctx context.Context, message any, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if x.pid.isStopped() {
		return nil, ErrDisconnected
	}
	if x.released.Load() {
		return nil, ErrAlreadyReleased
	}
	return x.pid.ask(ctx, message, timeout)
}

// Stop requests a graceful stop: the actor finishes its pending mailbox
// backlog, then runs its shutdown sequence. Stop returns once the actor has
// fully stopped, or ErrStopVetoed when the actor intercepted the stop and
// resumed running.
func (x *Address) Stop(ctx context.Context) error {
	if x.released.Load() && !x.pid.isStopped() {
		return ErrAlreadyReleased
	}
	vetoed, err := x.pid.stopGracefully(ctx)
	if err != nil {
		return err
	}
	if vetoed {
		return ErrStopVetoed
	}
	return x.pid.join(ctx)
}

// Kill requests an immediate stop: queued messages are discarded and their
// reply slots resolve with ErrDisconnected. Kill returns once the actor has
// fully stopped or the context is canceled.
func (x *Address) Kill(ctx context.Context) error {
	if x.released.Load() && !x.pid.isStopped() {
		return ErrAlreadyReleased
	}
	x.pid.requestStop(stopImmediately)
	return x.pid.join(ctx)
}

// Clone creates a new strong address on the same actor, incrementing the
// owner count. It fails with ErrAlreadyReleased when called on a released
// handle and with ErrDisconnected when the actor has already lost its last
// owner or stopped.
func (x *Address) Clone() (*Address, error) {
	if x.released.Load() {
		return nil, ErrAlreadyReleased
	}
	if !x.pid.retain() {
		return nil, ErrDisconnected
	}
	return newAddress(x.pid), nil
}

// Release gives up this handle's ownership unit. The first call decrements
// the owner count; further calls are no-ops. When the count reaches zero the
// actor's mailbox closes to regular messages and the actor stops after
// draining what was already accepted.
func (x *Address) Release() {
	if x.released.CompareAndSwap(false, true) {
		x.pid.release()
	}
}

// Downgrade returns a weak address on the same actor. The weak address does
// not count as an owner and never keeps the actor alive.
func (x *Address) Downgrade() *WeakAddress {
	return &WeakAddress{pid: x.pid}
}

// IsConnected reports whether the actor can still receive messages through
// this handle. Disconnection is monotonic: once false it never turns true
// again.
func (x *Address) IsConnected() bool {
	return !x.released.Load() && !x.pid.isStopped() && !x.pid.mailbox.IsClosed()
}

// Join blocks until the actor has fully stopped or the context is canceled.
// It does not itself request a stop.
func (x *Address) Join(ctx context.Context) error {
	return x.pid.join(ctx)
}

// Name returns the actor's registered name.
func (x *Address) Name() string {
	return x.pid.Name()
}

// ID returns the unique id of the underlying actor instance.
func (x *Address) ID() string {
	return x.pid.ID()
}

// Equals reports whether both addresses point at the same actor instance.
func (x *Address) Equals(other *Address) bool {
	if other == nil {
		return false
	}
	return x.pid == other.pid
}

// WeakAddress is a non-owning handle on an actor. It can observe the actor
// and send messages while the actor lives, but never prevents the actor from
// stopping.
type WeakAddress struct {
	pid *PID
}

// Upgrade attempts to turn the weak address into a strong one. It succeeds
// if and only if at least one strong address exists at that instant; the
// returned bool reports success. Upgrade never succeeds after the actor lost
// its last owner.
func (x *WeakAddress) Upgrade() (*Address, bool) {
	if !x.pid.retain() {
		return nil, false
	}
	return newAddress(x.pid), true
}

// Tell sends the given message without claiming ownership. It fails with
// ErrDisconnected once the actor is stopping or stopped.
func (x *WeakAddress) Tell(ctx context.Context, message any) error {
	if x.pid.isStopped() {
		return ErrDisconnected
	}
	return x.pid.tell(ctx, message)
}

// Ask sends the given message and waits for a response without claiming
// ownership. It fails with ErrDisconnected once the actor is stopping or
// stopped.
func (x *WeakAddress) Ask(ctx context.Context, message any, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if x.pid.isStopped() {
		return nil, ErrDisconnected
	}
	return x.pid.ask(ctx, message, timeout)
}

// IsConnected reports whether the actor can still receive messages.
func (x *WeakAddress) IsConnected() bool {
	return !x.pid.isStopped() && !x.pid.mailbox.IsClosed()
}

// Name returns the actor's registered name.
func (x *WeakAddress) Name() string {
	return x.pid.Name()
}
