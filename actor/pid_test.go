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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/spindlekit/spindle/log"
)

// test messages
type increment struct{}
type getCount struct{}
type block struct{}
type echo struct{ value string }

// counterActor increments loop-owned state without any synchronization.
type counterActor struct {
	count int
}

func (x *counterActor) PreStart(context.Context) error { return nil }

func (x *counterActor) Receive(ctx *ReceiveContext) {
	switch ctx.Message().(type) {
	case increment:
		x.count++
		ctx.Response(x.count)
	case getCount:
		ctx.Response(x.count)
	}
}

func (x *counterActor) PostStop(context.Context) error { return nil }

// gateActor parks on its gate when it receives block.
type gateActor struct {
	gate    chan struct{}
	entered chan struct{}
}

func newGateActor() *gateActor {
	return &gateActor{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 16),
	}
}

func (x *gateActor) PreStart(context.Context) error { return nil }

func (x *gateActor) Receive(ctx *ReceiveContext) {
	switch m := ctx.Message().(type) {
	case block:
		x.entered <- struct{}{}
		<-x.gate
	case echo:
		ctx.Response(m.value)
	}
}

func (x *gateActor) PostStop(context.Context) error { return nil }

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys, err := NewSystem("testsys", WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, sys.Start(context.TODO()))
	t.Cleanup(func() {
		_ = sys.Stop(context.TODO())
	})
	return sys
}

func TestAskSequentialOrdering(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.Spawn(ctx, "counter", &counterActor{})
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		got, err := addr.Ask(ctx, increment{}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	addr.Release()
}

func TestGracefulStopDrainsBacklog(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.Spawn(ctx, "counter", &counterActor{})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, addr.Tell(ctx, increment{}))
	}
	// a late Ask still sees every prior Tell applied
	got, err := addr.Ask(ctx, getCount{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	require.NoError(t, addr.Stop(ctx))
	assert.False(t, addr.IsConnected())
}

func TestKillDiscardsQueued(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := newGateActor()
	addr, err := sys.Spawn(ctx, "gate", actor)
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, block{}))
	<-actor.entered

	// queue asks behind the blocked handler
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := addr.Ask(ctx, echo{value: "queued"}, 5*time.Second)
			errs <- err
		}()
	}
	// make sure the asks are enqueued before the kill signal
	time.Sleep(100 * time.Millisecond)

	killed := make(chan error, 1)
	go func() {
		killed <- addr.Kill(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	close(actor.gate)

	require.NoError(t, <-killed)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, ErrDisconnected)
	}
}

func TestAskTimeout(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := newGateActor()
	addr, err := sys.Spawn(ctx, "gate", actor)
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, block{}))
	<-actor.entered

	_, err = addr.Ask(ctx, echo{value: "late"}, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrRequestTimeout)

	close(actor.gate)
	require.NoError(t, addr.Stop(ctx))
}

func TestAskTimeoutCoversBackpressure(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := newGateActor()
	addr, err := sys.Spawn(ctx, "gate", actor, WithMailbox(NewBoundedMailbox(1)))
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, block{}))
	<-actor.entered
	// the handler is parked, fill the single slot
	require.NoError(t, addr.Tell(ctx, echo{value: "queued"}))

	// the deadline must fire even though the mailbox never accepts the ask
	started := time.Now()
	_, err = addr.Ask(ctx, echo{value: "late"}, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.Less(t, time.Since(started), 2*time.Second)

	close(actor.gate)
	require.NoError(t, addr.Stop(ctx))
}

func TestTellCanceledWhileMailboxFull(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := newGateActor()
	addr, err := sys.Spawn(ctx, "gate", actor, WithMailbox(NewBoundedMailbox(1)))
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, block{}))
	<-actor.entered
	require.NoError(t, addr.Tell(ctx, echo{value: "queued"}))

	cancelCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- addr.Tell(cancelCtx, echo{value: "stuck"})
	}()
	// let the sender park on the full mailbox
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled sender was never released")
	}

	close(actor.gate)
	require.NoError(t, addr.Stop(ctx))
}

func TestBoundedMailboxActorProcessesBacklog(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.Spawn(ctx, "counter", &counterActor{}, WithMailbox(NewBoundedMailbox(1)))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, addr.Tell(ctx, increment{}))
	}
	got, err := addr.Ask(ctx, getCount{}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	require.NoError(t, addr.Stop(ctx))
	assert.False(t, addr.IsConnected())
}

func TestAskInvalidTimeout(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.Spawn(ctx, "counter", &counterActor{})
	require.NoError(t, err)

	_, err = addr.Ask(ctx, increment{}, 0)
	assert.ErrorIs(t, err, ErrInvalidTimeout)
	require.NoError(t, addr.Stop(ctx))
}

func TestUnansweredAskResolvesNil(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.SpawnFunc(ctx, "mute", func(*ReceiveContext) error {
		return nil
	})
	require.NoError(t, err)

	got, err := addr.Ask(ctx, "anyone there?", time.Second)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, addr.Stop(ctx))
}

func TestReceivePanicFailsAsk(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	addr, err := sys.SpawnFunc(ctx, "flaky", func(*ReceiveContext) error {
		panic("boom")
	})
	require.NoError(t, err)

	_, err = addr.Ask(ctx, "trigger", time.Second)
	require.Error(t, err)
	var panicErr PanicError
	assert.ErrorAs(t, err, &panicErr)

	// a panicking handler never kills the dispatch loop
	assert.True(t, addr.IsConnected())
	require.NoError(t, addr.Stop(ctx))
}

func TestSequentialMutualExclusion(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	inside := atomic.NewInt32(0)
	overlapped := atomic.NewBool(false)
	addr, err := sys.SpawnFunc(ctx, "exclusive", func(*ReceiveContext) error {
		if inside.Inc() > 1 {
			overlapped.Store(true)
		}
		time.Sleep(time.Millisecond)
		inside.Dec()
		return nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				assert.NoError(t, addr.Tell(ctx, i))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, addr.Stop(ctx))
	assert.False(t, overlapped.Load(), "two handlers ran inside Receive at once")
}

// interleavedActor switches to interleaved dispatch and parks wait messages
// on a channel without holding up other handlers.
type interleavedActor struct {
	release chan struct{}
}

func (x *interleavedActor) PreStart(context.Context) error { return nil }

func (x *interleavedActor) Receive(ctx *ReceiveContext) {
	switch ctx.Message() {
	case "switch":
		ctx.Interleave()
	case "wait":
		ctx.Await(func() { <-x.release })
		ctx.Response("slow")
	case "quick":
		ctx.Response("fast")
	}
}

func (x *interleavedActor) PostStop(context.Context) error { return nil }

func TestInterleavedOutOfOrderReplies(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := &interleavedActor{release: make(chan struct{})}
	addr, err := sys.Spawn(ctx, "interleaved", actor)
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, "switch"))

	slow := make(chan string, 1)
	go func() {
		got, err := addr.Ask(ctx, "wait", 5*time.Second)
		assert.NoError(t, err)
		slow <- got.(string)
	}()
	// let the wait handler start and park inside Await
	time.Sleep(100 * time.Millisecond)

	// the quick ask completes while the earlier one is still parked
	got, err := addr.Ask(ctx, "quick", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "fast", got)

	select {
	case <-slow:
		t.Fatal("slow reply completed before its gate opened")
	default:
	}

	close(actor.release)
	assert.Equal(t, "slow", <-slow)
	require.NoError(t, addr.Stop(ctx))
}

func TestGracefulStopWaitsForInflight(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := &interleavedActor{release: make(chan struct{})}
	addr, err := sys.Spawn(ctx, "interleaved", actor)
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, "switch"))
	go func() {
		_, _ = addr.Ask(ctx, "wait", 5*time.Second)
	}()
	time.Sleep(100 * time.Millisecond)

	stopped := make(chan error, 1)
	go func() {
		stopped <- addr.Stop(ctx)
	}()

	select {
	case <-stopped:
		t.Fatal("stop completed while a handler was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(actor.release)
	require.NoError(t, <-stopped)
}

// stubbornActor vetoes the first graceful stop.
type stubbornActor struct {
	counterActor
	vetoes *atomic.Int32
}

func (x *stubbornActor) OnStopping(context.Context) bool {
	return x.vetoes.Inc() == 1
}

func TestStopVetoedOnce(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := &stubbornActor{vetoes: atomic.NewInt32(0)}
	addr, err := sys.Spawn(ctx, "stubborn", actor)
	require.NoError(t, err)

	err = addr.Stop(ctx)
	assert.ErrorIs(t, err, ErrStopVetoed)

	// the actor resumed and keeps processing
	got, err := addr.Ask(ctx, increment{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	// the single reversal is spent, the second stop goes through without
	// consulting the interceptor again
	require.NoError(t, addr.Stop(ctx))
	assert.False(t, addr.IsConnected())
	assert.EqualValues(t, 1, actor.vetoes.Load())
}

// auditingActor runs interleaved and records whether a handler was still in
// flight when its stop hook fired.
type auditingActor struct {
	release     chan struct{}
	entered     chan struct{}
	inHandler   *atomic.Bool
	sawInflight *atomic.Bool
}

func newAuditingActor() *auditingActor {
	return &auditingActor{
		release:     make(chan struct{}),
		entered:     make(chan struct{}, 1),
		inHandler:   atomic.NewBool(false),
		sawInflight: atomic.NewBool(false),
	}
}

func (x *auditingActor) PreStart(context.Context) error { return nil }

func (x *auditingActor) Receive(ctx *ReceiveContext) {
	switch ctx.Message() {
	case "switch":
		ctx.Interleave()
	case "wait":
		x.inHandler.Store(true)
		x.entered <- struct{}{}
		ctx.Await(func() { <-x.release })
		x.inHandler.Store(false)
	}
}

func (x *auditingActor) PostStop(context.Context) error { return nil }

func (x *auditingActor) OnStopping(context.Context) bool {
	x.sawInflight.Store(x.inHandler.Load())
	return false
}

func TestStopInterceptorWaitsForInflight(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := newAuditingActor()
	addr, err := sys.Spawn(ctx, "auditing", actor)
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, "switch"))
	require.NoError(t, addr.Tell(ctx, "wait"))
	<-actor.entered

	stopped := make(chan error, 1)
	go func() {
		stopped <- addr.Stop(ctx)
	}()

	// the stop hook must not fire while the handler is parked
	select {
	case <-stopped:
		t.Fatal("stop completed while a handler was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(actor.release)
	require.NoError(t, <-stopped)
	assert.False(t, actor.sawInflight.Load(), "stop hook ran concurrently with a handler")
}

// failingActor fails PreStart a configurable number of times.
type failingActor struct {
	counterActor
	failures *atomic.Int32
	attempts *atomic.Int32
}

func (x *failingActor) PreStart(context.Context) error {
	if x.attempts.Inc() <= x.failures.Load() {
		return errors.New("not ready")
	}
	return nil
}

func TestPreStartFailure(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := &failingActor{failures: atomic.NewInt32(100), attempts: atomic.NewInt32(0)}
	_, err := sys.Spawn(ctx, "broken", actor,
		WithInitMaxRetries(2),
		WithInitTimeout(500*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailure)

	_, err = sys.ActorOf("broken")
	assert.ErrorIs(t, err, ErrActorNotFound)
}

func TestPreStartRetries(t *testing.T) {
	ctx := context.TODO()
	sys := newTestSystem(t)

	actor := &failingActor{failures: atomic.NewInt32(2), attempts: atomic.NewInt32(0)}
	addr, err := sys.Spawn(ctx, "eventually", actor,
		WithInitMaxRetries(5),
		WithInitTimeout(5*time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, actor.attempts.Load(), int32(3))
	require.NoError(t, addr.Stop(ctx))
}
