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
	"fmt"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/spindlekit/spindle/eventstream"
	"github.com/spindlekit/spindle/internal/future"
	"github.com/spindlekit/spindle/log"
)

// lifecycle phase of an actor. Transitions only move forward except for the
// single allowed Stopping→Running veto reversal.
const (
	idle int32 = iota
	starting
	running
	stopping
	stopped
)

const (
	// DefaultInitMaxRetries is the number of PreStart attempts before the
	// spawn is abandoned.
	DefaultInitMaxRetries = 5
	// DefaultInitTimeout bounds the whole PreStart retry sequence.
	DefaultInitTimeout = time.Second

	initRetryDelay = 100 * time.Millisecond
	drainBackoff   = time.Millisecond
)

// PID is the runtime identity of a spawned actor: its mailbox, its dispatch
// loop and its lifecycle state. User code holds Address and WeakAddress
// handles; the PID itself stays inside the framework.
type PID struct {
	name     string
	id       string
	actor    Actor
	mailbox  Mailbox
	executor Executor
	logger   log.Logger

	state  *atomic.Int32
	owners *atomic.Int64

	// wakeup nudges the dispatch loop when the mailbox goes non-empty
	wakeup chan struct{}
	done   chan struct{}

	// permit serializes synchronous handler segments across sequential and
	// interleaved dispatch
	permit       *semaphore.Weighted
	inflight     sync.WaitGroup
	interleaving *atomic.Bool
	vetoUsed     bool

	initMaxRetries int
	initTimeout    time.Duration

	eventsStream eventstream.Stream
	deadletters  *atomic.Int64
}

// pidOption configures a PID at spawn time.
type pidOption func(*PID)

func withMailbox(mailbox Mailbox) pidOption {
	return func(p *PID) { p.mailbox = mailbox }
}

func withExecutor(executor Executor) pidOption {
	return func(p *PID) { p.executor = executor }
}

func withLogger(logger log.Logger) pidOption {
	return func(p *PID) { p.logger = logger }
}

func withEventsStream(stream eventstream.Stream) pidOption {
	return func(p *PID) { p.eventsStream = stream }
}

func withInitMaxRetries(retries int) pidOption {
	return func(p *PID) { p.initMaxRetries = retries }
}

func withInitTimeout(timeout time.Duration) pidOption {
	return func(p *PID) { p.initTimeout = timeout }
}

func withDeadlettersCounter(counter *atomic.Int64) pidOption {
	return func(p *PID) { p.deadletters = counter }
}

// newPID creates a PID for the given actor. The PID starts with a single
// owner, accounted to the Address returned by Spawn.
func newPID(name string, actor Actor, opts ...pidOption) *PID {
	p := &PID{
		name:           name,
		id:             uuid.NewString(),
		actor:          actor,
		mailbox:        NewUnboundedMailbox(),
		executor:       NewGoExecutor(),
		logger:         log.DefaultLogger,
		state:          atomic.NewInt32(idle),
		owners:         atomic.NewInt64(1),
		wakeup:         make(chan struct{}, 1),
		done:           make(chan struct{}),
		permit:         semaphore.NewWeighted(1),
		interleaving:   atomic.NewBool(false),
		initMaxRetries: DefaultInitMaxRetries,
		initTimeout:    DefaultInitTimeout,
		deadletters:    atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the actor's registered name.
func (p *PID) Name() string {
	return p.name
}

// ID returns the unique id of this actor instance.
func (p *PID) ID() string {
	return p.id
}

// IsRunning reports whether the dispatch loop is in the Running phase.
func (p *PID) IsRunning() bool {
	return p.state.Load() == running
}

func (p *PID) isStopped() bool {
	return p.state.Load() == stopped
}

// start runs the actor's initialization synchronously and, on success,
// hands the dispatch loop to the executor. The loop owns the actor's state
// until Stopped.
func (p *PID) start(ctx context.Context) error {
	p.state.Store(starting)
	if err := p.init(ctx); err != nil {
		p.state.Store(stopped)
		p.owners.Store(0)
		p.mailbox.Close()
		close(p.done)
		return NewErrInitFailure(err)
	}
	p.state.Store(running)
	p.executor.Spawn(p.run)

	if p.eventsStream != nil {
		p.eventsStream.Publish(TopicLifecycle, &ActorStarted{Name: p.name, At: time.Now()})
	}
	p.logger.Infof("actor=(%s) started", p.name)
	return nil
}

// init runs PreStart with bounded retries under the init timeout.
func (p *PID) init(ctx context.Context) error {
	cancelCtx, cancel := context.WithTimeout(ctx, p.initTimeout)
	defer cancel()
	retrier := retry.NewRetrier(p.initMaxRetries, initRetryDelay, p.initTimeout)
	if err := retrier.RunContext(cancelCtx, p.actor.PreStart); err != nil {
		p.logger.Errorf("actor=(%s) failed to initialize: %v", p.name, err)
		return err
	}
	return nil
}

// tell enqueues a fire-and-forget message. A send blocked on a full bounded
// mailbox unblocks when the context is canceled.
func (p *PID) tell(ctx context.Context, message any) error {
	env := getEnvelope()
	env.message = message
	if err := p.mailbox.Enqueue(ctx, env); err != nil {
		releaseEnvelope(env)
		return err
	}
	p.wake()
	return nil
}

// ask enqueues a request and waits for its one-shot reply, the timeout or
// context cancellation. The deadline covers the accept phase too: a caller
// parked on a full bounded mailbox still times out. The timeout runs on the
// executor's sleep capability so Ask behaves correctly under virtualized
// time.
func (p *PID) ask(ctx context.Context, message any, timeout time.Duration) (any, error) {
	reply := future.New()
	env := getEnvelope()
	env.message = message
	env.reply = reply

	sleepCtx, cancelSleep := context.WithCancel(context.Background())
	defer cancelSleep()
	sendCtx, cancelSend := context.WithCancel(ctx)
	defer cancelSend()
	timedOut := make(chan struct{})
	p.executor.Spawn(func() {
		if err := p.executor.SleepUntil(sleepCtx, time.Now().Add(timeout)); err == nil {
			close(timedOut)
			cancelSend()
		}
	})

	if err := p.mailbox.Enqueue(sendCtx, env); err != nil {
		releaseEnvelope(env)
		select {
		case <-timedOut:
			return nil, ErrRequestTimeout
		default:
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	p.wake()

	select {
	case <-reply.Done():
		return reply.Result()
	case <-timedOut:
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// requestStop injects a stop signal on the control lane without waiting for
// an outcome. Control signals overtake any user-message backlog.
func (p *PID) requestStop(signal controlSignal) {
	if p.isStopped() {
		return
	}
	env := getEnvelope()
	env.signal = signal
	p.mailbox.EnqueueControl(env)
	p.wake()
}

// stopGracefully injects a graceful stop signal and waits for the loop to
// either commit to stopping or veto. It reports true when the stop was
// vetoed and the actor resumed.
func (p *PID) stopGracefully(ctx context.Context) (bool, error) {
	if p.isStopped() {
		return false, nil
	}
	reply := future.New()
	env := getEnvelope()
	env.signal = stopGracefully
	env.reply = reply
	p.mailbox.EnqueueControl(env)
	p.wake()

	select {
	case <-reply.Done():
		outcome, _ := reply.Result()
		vetoed, _ := outcome.(bool)
		return vetoed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// retain increments the owner count if and only if it is still positive.
func (p *PID) retain() bool {
	for {
		n := p.owners.Load()
		if n <= 0 {
			return false
		}
		if p.owners.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release decrements the owner count. When the count hits zero the mailbox
// closes to regular traffic and the dispatch loop is told to drain and stop.
func (p *PID) release() {
	if p.owners.Dec() > 0 {
		return
	}
	p.mailbox.Close()
	env := getEnvelope()
	env.signal = ownersReleased
	p.mailbox.EnqueueControl(env)
	p.wake()
}

// join blocks until the actor is fully stopped or the context is canceled.
func (p *PID) join(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PID) wake() {
	select {
	case p.wakeup <- struct{}{}:
	default:
	}
}

// run is the actor's dispatch loop: the only task that ever touches the
// actor's state. It runs from Running until Stopped as a single executor
// task.
func (p *PID) run() {
	for {
		env := p.mailbox.Dequeue()
		if env == nil {
			if p.mailbox.Settled() {
				// last producer is gone and nothing is queued
				p.shutdown(false)
				return
			}
			<-p.wakeup
			continue
		}

		if env.signal != noSignal {
			signal := env.signal
			reply := env.reply
			releaseEnvelope(env)
			switch signal {
			case stopGracefully:
				if p.confirmStop() {
					if reply != nil {
						reply.Complete(true)
					}
					continue
				}
				if reply != nil {
					reply.Complete(false)
				}
				p.shutdown(false)
				return
			case stopImmediately:
				p.shutdown(true)
				return
			case ownersReleased:
				p.shutdown(false)
				return
			}
			continue
		}

		p.dispatch(env)
	}
}

// confirmStop gives the actor its one chance to veto a graceful stop. It
// reports true when the stop was vetoed and the actor resumes Running.
func (p *PID) confirmStop() bool {
	interceptor, ok := p.actor.(StopInterceptor)
	if !ok || p.vetoUsed {
		return false
	}
	p.vetoUsed = true
	// outstanding interleaved handlers finish before the hook may touch the
	// actor's state
	p.inflight.Wait()
	p.state.Store(stopping)
	if interceptor.OnStopping(context.Background()) {
		p.state.Store(running)
		p.logger.Debugf("actor=(%s) vetoed stop, resuming", p.name)
		return true
	}
	return false
}

// dispatch hands one user envelope to the actor under the current dispatch
// mode. The permit is always acquired here, in mailbox order, so handler
// starts are FIFO even when the handlers themselves are interleaved.
func (p *PID) dispatch(env *envelope) {
	_ = p.permit.Acquire(context.Background(), 1)
	if !p.interleaving.Load() {
		p.invoke(env, false)
		p.permit.Release(1)
		return
	}

	p.inflight.Add(1)
	p.executor.Spawn(func() {
		defer p.inflight.Done()
		p.invoke(env, true)
		p.permit.Release(1)
	})
}

// invoke runs the actor's Receive hook for one envelope, recovering panics
// and guaranteeing the reply slot resolves exactly once.
func (p *PID) invoke(env *envelope, interleaved bool) {
	message := env.message
	reply := env.reply
	releaseEnvelope(env)

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			p.logger.Errorf("actor=(%s) receive panicked: %v", p.name, err)
			if reply != nil {
				reply.Fail(NewPanicError(err))
			}
		}
	}()

	rctx := getReceiveContext(context.Background(), p, message, reply, interleaved)
	p.actor.Receive(rctx)
	releaseReceiveContext(rctx)

	// an unanswered Ask still resolves so the caller never hangs
	if reply != nil {
		reply.Complete(nil)
	}
}

// shutdown runs the Stopping phase: close the mailbox, wait for in-flight
// handlers, drain the backlog (delivering or discarding), then dispose the
// mailbox and run PostStop. discard discards queued envelopes, resolving
// their reply slots with ErrDisconnected; handlers already dispatched always
// run to completion.
func (p *PID) shutdown(discard bool) {
	p.state.Store(stopping)
	p.owners.Store(0)
	p.mailbox.Close()
	p.inflight.Wait()

	for !p.mailbox.Settled() {
		env := p.mailbox.Dequeue()
		if env == nil {
			// a producer raced Close and has not published yet
			select {
			case <-p.wakeup:
			case <-time.After(drainBackoff):
			}
			continue
		}
		if env.signal != noSignal {
			// a late stop request while already stopping; its caller just
			// waits for done
			if env.reply != nil {
				env.reply.Complete(false)
			}
			releaseEnvelope(env)
			continue
		}
		if discard {
			p.discard(env)
			continue
		}
		// drained envelopes are always delivered sequentially
		p.invoke(env, false)
	}
	p.mailbox.Dispose()

	if err := p.actor.PostStop(context.Background()); err != nil {
		p.logger.Errorf("actor=(%s) post stop failed: %v", p.name, err)
	}

	p.state.Store(stopped)
	if p.eventsStream != nil {
		p.eventsStream.Publish(TopicLifecycle, &ActorStopped{Name: p.name, At: time.Now()})
	}
	p.logger.Infof("actor=(%s) stopped", p.name)
	close(p.done)
}

// discard resolves a dropped envelope's reply slot with ErrDisconnected and
// publishes a deadletter for it.
func (p *PID) discard(env *envelope) {
	message := env.message
	env.resolveDiscarded()
	releaseEnvelope(env)
	p.deadletters.Inc()
	if p.eventsStream != nil {
		p.eventsStream.Publish(TopicDeadletter, &Deadletter{
			ActorName: p.name,
			Message:   message,
			At:        time.Now(),
		})
	}
}
