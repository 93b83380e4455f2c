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
	"errors"
	"fmt"
)

var (
	// ErrDisconnected indicates that the target actor's mailbox is closed or
	// the actor has stopped. Once observed from any operation, every later
	// operation on addresses to the same actor also reports it; an actor
	// never reconnects.
	ErrDisconnected = errors.New("actor is disconnected")

	// ErrRequestTimeout indicates that an Ask timed out while waiting for a
	// response. The message may still be delivered and processed; only the
	// caller stops waiting.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrInitFailure is returned when the actor's PreStart hook fails during
	// initialization.
	ErrInitFailure = errors.New("preStart failed")

	// ErrAlreadyReleased is returned when operating on a strong address whose
	// ownership has already been released.
	ErrAlreadyReleased = errors.New("address already released")

	// ErrInvalidTimeout is returned when a timeout value is less than or
	// equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrActorAlreadyExists is returned when spawning an actor under a name
	// that is already taken.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrActorNotFound indicates that the specified actor could not be found
	// in the system.
	ErrActorNotFound = errors.New("actor not found")

	// ErrNameRequired is returned when a system name is required but not
	// provided.
	ErrNameRequired = errors.New("name is required")

	// ErrSystemNotStarted indicates that the actor system has not been
	// started before use.
	ErrSystemNotStarted = errors.New("actor system has not started yet")

	// ErrSchedulerNotStarted indicates that the messages scheduler has not
	// started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrStopVetoed indicates that the actor intercepted a graceful stop and
	// resumed running. An actor can veto at most one stop in its lifetime.
	ErrStopVetoed = errors.New("actor vetoed stop")
)

// NewErrInitFailure wraps a base error with ErrInitFailure to indicate a
// startup failure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrActorAlreadyExists formats an ErrActorAlreadyExists for the given
// actor name.
func NewErrActorAlreadyExists(name string) error {
	return fmt.Errorf("actor=(%s) %w", name, ErrActorAlreadyExists)
}

// NewErrActorNotFound formats an ErrActorNotFound for the given actor name.
func NewErrActorNotFound(name string) error {
	return fmt.Errorf("actor=(%s) %w", name, ErrActorNotFound)
}

// PanicError wraps the value recovered from a panicking handler.
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) PanicError {
	return PanicError{err}
}

// Error implements the standard error interface
func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}
