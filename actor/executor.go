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

	"github.com/spindlekit/spindle/internal/workerpool"
)

// Executor abstracts the scheduling substrate the framework runs on. The
// framework never reaches for the runtime directly: every dispatch loop,
// interleaved handler and timer goes through the system's Executor, so the
// whole framework can be rehosted on a custom scheduler by supplying a
// different implementation.
type Executor interface {
	// Spawn runs the given task concurrently. The task runs to completion;
	// the executor must not drop it.
	Spawn(task func())
	// SleepUntil blocks until the given deadline passes or the context is
	// canceled, in which case it returns the context's error.
	SleepUntil(ctx context.Context, deadline time.Time) error
}

// GoExecutor runs tasks on plain goroutines and sleeps on runtime timers.
// It is the system default.
type GoExecutor struct{}

// enforce compilation error
var _ Executor = (*GoExecutor)(nil)

// NewGoExecutor creates an instance of GoExecutor.
func NewGoExecutor() *GoExecutor {
	return &GoExecutor{}
}

// Spawn runs the task on a new goroutine.
func (x *GoExecutor) Spawn(task func()) {
	go task()
}

// SleepUntil blocks until the deadline passes or the context is canceled.
func (x *GoExecutor) SleepUntil(ctx context.Context, deadline time.Time) error {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PoolExecutor runs tasks on a shared worker pool that recycles idle
// goroutines, trading a small scheduling hop for fewer goroutine spawns
// under churny workloads.
type PoolExecutor struct {
	pool *workerpool.Pool
}

// enforce compilation error
var _ Executor = (*PoolExecutor)(nil)

// NewPoolExecutor creates an instance of PoolExecutor backed by a started
// worker pool.
func NewPoolExecutor(opts ...workerpool.Option) *PoolExecutor {
	pool := workerpool.New(opts...)
	pool.Start()
	return &PoolExecutor{pool: pool}
}

// Spawn submits the task to the worker pool, falling back to a fresh
// goroutine if the pool has been stopped.
func (x *PoolExecutor) Spawn(task func()) {
	if err := x.pool.Submit(task); err != nil {
		go task()
	}
}

// SleepUntil blocks until the deadline passes or the context is canceled.
func (x *PoolExecutor) SleepUntil(ctx context.Context, deadline time.Time) error {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the underlying worker pool down.
func (x *PoolExecutor) Stop() {
	x.pool.Stop()
}
