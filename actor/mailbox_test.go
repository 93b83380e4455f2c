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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedMailboxFIFO(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		env := &envelope{message: i}
		require.NoError(t, mailbox.Enqueue(ctx, env))
	}
	require.EqualValues(t, 10, mailbox.Len())

	for i := 0; i < 10; i++ {
		env := mailbox.Dequeue()
		require.NotNil(t, env)
		assert.Equal(t, i, env.message)
	}
	assert.Nil(t, mailbox.Dequeue())
	assert.True(t, mailbox.IsEmpty())
}

func TestUnboundedMailboxControlLaneOvertakes(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "first"}))
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "second"}))
	mailbox.EnqueueControl(&envelope{signal: stopGracefully})

	env := mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, stopGracefully, env.signal)

	env = mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "first", env.message)
}

func TestUnboundedMailboxClosed(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "kept"}))
	mailbox.Close()

	assert.True(t, mailbox.IsClosed())
	assert.ErrorIs(t, mailbox.Enqueue(ctx, &envelope{message: "dropped"}), ErrDisconnected)

	// the control lane outlives Close
	mailbox.EnqueueControl(&envelope{signal: stopImmediately})

	// queued envelopes stay dequeuable after Close
	env := mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, stopImmediately, env.signal)
	env = mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "kept", env.message)
	assert.True(t, mailbox.Settled())
}

func TestUnboundedMailboxConcurrentProducers(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	ctx := context.Background()
	const producers = 8
	const perProducer = 1000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: i}))
			}
		}()
	}
	wg.Wait()

	count := 0
	for mailbox.Dequeue() != nil {
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestBoundedMailboxBlocksAtCapacity(t *testing.T) {
	mailbox := NewBoundedMailbox(1)
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "first"}))

	unblocked := make(chan struct{})
	go func() {
		require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "second"}))
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("enqueue should block while the mailbox is at capacity")
	case <-time.After(100 * time.Millisecond):
	}

	env := mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "first", env.message)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("enqueue should unblock once a slot frees up")
	}

	env = mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "second", env.message)
	mailbox.Close()
	mailbox.Dispose()
}

func TestBoundedMailboxClosed(t *testing.T) {
	mailbox := NewBoundedMailbox(4)
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "kept"}))
	mailbox.Close()

	assert.ErrorIs(t, mailbox.Enqueue(ctx, &envelope{message: "dropped"}), ErrDisconnected)

	env := mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "kept", env.message)
	assert.True(t, mailbox.Settled())
	mailbox.Dispose()
}

func TestBoundedMailboxCapacityOneSustainedTraffic(t *testing.T) {
	mailbox := NewBoundedMailbox(1)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: i}))
		}
	}()

	// every envelope must come back out, in order, with no slot ever
	// holding more than one message
	for i := 0; i < 100; i++ {
		var env *envelope
		require.Eventually(t, func() bool {
			env = mailbox.Dequeue()
			return env != nil
		}, time.Second, time.Millisecond)
		assert.Equal(t, i, env.message)
		assert.LessOrEqual(t, mailbox.Len(), int64(1))
	}
	<-done

	mailbox.Close()
	assert.True(t, mailbox.Settled())
	mailbox.Dispose()
}

func TestBoundedMailboxEnqueueCanceled(t *testing.T) {
	mailbox := NewBoundedMailbox(1)
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "first"}))

	cancelCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- mailbox.Enqueue(cancelCtx, &envelope{message: "second"})
	}()
	// let the producer park on the full mailbox
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled producer was never released")
	}

	// the canceled send gave its slot back
	env := mailbox.Dequeue()
	require.NotNil(t, env)
	assert.Equal(t, "first", env.message)
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "third"}))
	mailbox.Close()
	mailbox.Dequeue()
	mailbox.Dispose()
}

func TestBoundedMailboxBlockedProducerReleasedOnDispose(t *testing.T) {
	mailbox := NewBoundedMailbox(1)
	ctx := context.Background()
	require.NoError(t, mailbox.Enqueue(ctx, &envelope{message: "first"}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- mailbox.Enqueue(ctx, &envelope{message: "second"})
	}()
	// let the producer park on the full buffer
	time.Sleep(50 * time.Millisecond)

	mailbox.Close()
	// drain until the parked producer either lands its envelope or fails
	for !mailbox.Settled() {
		if env := mailbox.Dequeue(); env == nil {
			time.Sleep(time.Millisecond)
		}
	}
	mailbox.Dispose()

	select {
	case err := <-errCh:
		// landing after Close is fine, failing with ErrDisconnected is fine;
		// hanging forever is not
		if err != nil {
			assert.ErrorIs(t, err, ErrDisconnected)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked producer was never released")
	}
}
