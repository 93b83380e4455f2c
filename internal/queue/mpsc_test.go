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

package queue

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	q := NewMPSC[int]()
	assert.True(t, q.IsEmpty())

	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.EqualValues(t, 3, q.Len())

	for want := 1; want <= 3; want++ {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}

func TestConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 500

	q := NewMPSC[int]()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range perProducer {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	seen := make(map[int]bool, producers*perProducer)
	for len(seen) < producers*perProducer {
		v, ok := q.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		require.False(t, seen[v], "value %d popped twice", v)
		seen[v] = true
	}

	wg.Wait()
	assert.True(t, q.IsEmpty())
}

func TestPerProducerOrder(t *testing.T) {
	q := NewMPSC[[2]int]()

	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range 200 {
				q.Push([2]int{p, i})
			}
		}(p)
	}
	wg.Wait()

	last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		require.Greater(t, v[1], last[v[0]], "producer %d order violated", v[0])
		last[v[0]] = v[1]
	}
}
