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

import "github.com/spindlekit/spindle/log"

// Option is the interface that applies a System option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(system *System)
}

var _ Option = option(nil)

// option implements the Option interface.
type option func(system *System)

// Apply implementation
func (f option) Apply(s *System) {
	f(s)
}

// WithLogger sets the logger the system and its actors use.
func WithLogger(logger log.Logger) Option {
	return option(func(s *System) {
		s.logger = logger
	})
}

// WithExecutor sets the scheduling substrate the system runs on. All
// dispatch loops, interleaved handlers and Ask timers go through it.
func WithExecutor(executor Executor) Option {
	return option(func(s *System) {
		s.executor = executor
	})
}
