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

// Package future provides a single-use, single-value completion slot.
// It is the reply channel carried by request/response envelopes: the producer
// side resolves it exactly once and any number of goroutines may await it.
package future

import (
	"context"

	"go.uber.org/atomic"
)

// Future is a one-shot completion slot. It is resolved at most once, either
// with a value through Complete or with an error through Fail; later
// resolutions are ignored. A Future abandoned by its consumer can still be
// resolved safely, the outcome is simply never observed.
type Future struct {
	resolved *atomic.Bool
	value    any
	err      error
	done     chan struct{}
}

// New creates an unresolved Future.
func New() *Future {
	return &Future{
		resolved: atomic.NewBool(false),
		done:     make(chan struct{}),
	}
}

// Complete resolves the future with the given value. It reports whether this
// call won the resolution; a false return means the future was already
// resolved and the value has been discarded.
func (f *Future) Complete(value any) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.value = value
	close(f.done)
	return true
}

// Fail resolves the future with the given error. It reports whether this call
// won the resolution.
func (f *Future) Fail(err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.err = err
	close(f.done)
	return true
}

// Done returns a channel that is closed once the future has been resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the resolution outcome. It must only be called after Done
// has been observed closed; the write to value/err happens-before the close.
func (f *Future) Result() (any, error) {
	return f.value, f.err
}

// Await blocks until the future is resolved or the context is cancelled.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsResolved reports whether the future has been resolved.
func (f *Future) IsResolved() bool {
	return f.resolved.Load()
}
