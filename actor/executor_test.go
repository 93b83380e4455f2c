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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spindlekit/spindle/log"
)

func TestGoExecutorSleepUntil(t *testing.T) {
	executor := NewGoExecutor()

	start := time.Now()
	require.NoError(t, executor.SleepUntil(context.TODO(), time.Now().Add(50*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.TODO())
	cancel()
	err := executor.SleepUntil(ctx, time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGoExecutorSpawn(t *testing.T) {
	executor := NewGoExecutor()
	done := make(chan struct{})
	executor.Spawn(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spawned task never ran")
	}
}

func TestPoolExecutorRunsActors(t *testing.T) {
	ctx := context.TODO()
	executor := NewPoolExecutor()
	defer executor.Stop()

	sys, err := NewSystem("pooled",
		WithLogger(log.DiscardLogger),
		WithExecutor(executor))
	require.NoError(t, err)
	require.NoError(t, sys.Start(ctx))

	addr, err := sys.Spawn(ctx, "counter", &counterActor{})
	require.NoError(t, err)
	for want := 1; want <= 3; want++ {
		got, err := addr.Ask(ctx, increment{}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, addr.Stop(ctx))
	require.NoError(t, sys.Stop(ctx))
}

func TestPoolExecutorSleepUntil(t *testing.T) {
	executor := NewPoolExecutor()
	defer executor.Stop()

	start := time.Now()
	require.NoError(t, executor.SleepUntil(context.TODO(), time.Now().Add(20*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
