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

// Package workerpool provides a goroutine pool that reuses idle workers.
// Workers stay pinned to a task for as long as the task runs, so the pool is
// safe to host long-lived work such as actor dispatch loops.
package workerpool

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ErrNotStarted is returned when a task is submitted before Start.
var ErrNotStarted = errors.New("worker pool must be started first")

const defaultIdleLifetime = 15 * time.Second

// worker owns a task channel; it runs until the channel is closed.
type worker struct {
	taskChan chan func()
	lastUsed time.Time
}

// Pool reuses idle workers and spawns new ones on demand. There is no upper
// bound on the number of workers; workers idle beyond the configured lifetime
// are retired by a background janitor.
type Pool struct {
	mu           sync.Mutex
	idle         []*worker
	started      bool
	stopped      bool
	idleLifetime time.Duration
	spawned      *atomic.Int64
	janitorStop  chan struct{}
}

// Option configures a Pool.
type Option func(*Pool)

// WithIdleLifetime sets the duration after which idle workers are retired.
func WithIdleLifetime(d time.Duration) Option {
	return func(p *Pool) {
		p.idleLifetime = d
	}
}

// New creates a Pool. Call Start before submitting tasks.
func New(opts ...Option) *Pool {
	p := &Pool{
		idleLifetime: defaultIdleLifetime,
		spawned:      atomic.NewInt64(0),
		janitorStop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the pool janitor. It is idempotent.
func (p *Pool) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.janitor()
}

// Stop retires all idle workers and stops the janitor. Workers currently
// running a task finish it and then exit instead of returning to the pool.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	close(p.janitorStop)
	for _, w := range idle {
		close(w.taskChan)
	}
}

// Submit hands the task to an idle worker, spawning a new worker when none is
// available. The task may run for an arbitrary duration.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	if p.stopped {
		p.mu.Unlock()
		// the pool no longer recycles workers, run the task standalone
		// so callers do not have to special-case shutdown races
		go task()
		return nil
	}

	var w *worker
	if n := len(p.idle); n > 0 {
		w = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()

	if w == nil {
		w = &worker{taskChan: make(chan func(), 1)}
		p.spawned.Inc()
		go p.work(w)
	}

	w.taskChan <- task
	return nil
}

// SpawnedWorkers returns the number of workers created so far.
func (p *Pool) SpawnedWorkers() int {
	return int(p.spawned.Load())
}

// IdleWorkers returns the number of workers currently parked.
func (p *Pool) IdleWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// work runs tasks until the worker's channel is closed.
func (p *Pool) work(w *worker) {
	defer p.spawned.Dec()
	for task := range w.taskChan {
		task()
		if !p.park(w) {
			return
		}
	}
}

// park returns the worker to the idle list. It reports false when the pool is
// stopped and the worker must exit.
func (p *Pool) park(w *worker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	w.lastUsed = time.Now()
	p.idle = append(p.idle, w)
	return true
}

// janitor retires workers that have been idle longer than the idle lifetime.
func (p *Pool) janitor() {
	interval := p.idleLifetime
	if interval <= 0 {
		interval = defaultIdleLifetime
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.janitorStop:
			return
		case now := <-ticker.C:
			p.mu.Lock()
			kept := p.idle[:0]
			var retired []*worker
			for _, w := range p.idle {
				if now.Sub(w.lastUsed) >= p.idleLifetime {
					retired = append(retired, w)
					continue
				}
				kept = append(kept, w)
			}
			p.idle = kept
			p.mu.Unlock()

			for _, w := range retired {
				close(w.taskChan)
			}
		}
	}
}
