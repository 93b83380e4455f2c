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

// ReceiveFunc handles a single message for a func-based actor. The returned
// error, if any, answers the sender of an Ask.
type ReceiveFunc = func(ctx *ReceiveContext) error

// PreStartFunc defines the PreStart hook for a func-based actor.
type PreStartFunc = func(ctx context.Context) error

// PostStopFunc defines the PostStop hook for a func-based actor.
type PostStopFunc = func(ctx context.Context) error

// FuncOption configures a func-based actor.
type FuncOption interface {
	// Apply sets the Option value of a config.
	Apply(config *funcConfig)
}

var _ FuncOption = funcOption(nil)

// funcOption implements the FuncOption interface.
type funcOption func(config *funcConfig)

// Apply implementation
func (f funcOption) Apply(c *funcConfig) {
	f(c)
}

type funcConfig struct {
	preStart PreStartFunc
	postStop PostStopFunc
}

func newFuncConfig(opts ...FuncOption) *funcConfig {
	config := &funcConfig{}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// WithPreStart defines the PreStart hook.
func WithPreStart(fn PreStartFunc) FuncOption {
	return funcOption(func(config *funcConfig) {
		config.preStart = fn
	})
}

// WithPostStop defines the PostStop hook.
func WithPostStop(fn PostStopFunc) FuncOption {
	return funcOption(func(config *funcConfig) {
		config.postStop = fn
	})
}

// FuncActor wraps a plain message-handling closure as an Actor, for actors
// that carry no state of their own or close over it.
type FuncActor struct {
	receiveFunc ReceiveFunc
	config      *funcConfig
}

// newFuncActor creates an instance of FuncActor.
func newFuncActor(receiveFunc ReceiveFunc, config *funcConfig) *FuncActor {
	return &FuncActor{
		receiveFunc: receiveFunc,
		config:      config,
	}
}

// enforce compilation error
var _ Actor = (*FuncActor)(nil)

// PreStart pre-starts the actor.
func (x *FuncActor) PreStart(ctx context.Context) error {
	if preStart := x.config.preStart; preStart != nil {
		return preStart(ctx)
	}
	return nil
}

// Receive processes any message dropped into the actor mailbox.
func (x *FuncActor) Receive(ctx *ReceiveContext) {
	if err := x.receiveFunc(ctx); err != nil {
		ctx.Err(err)
	}
}

// PostStop is executed when the actor is shutting down.
func (x *FuncActor) PostStop(ctx context.Context) error {
	if postStop := x.config.postStop; postStop != nil {
		return postStop(ctx)
	}
	return nil
}
