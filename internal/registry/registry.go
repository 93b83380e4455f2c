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

// Package registry provides a concurrent string-keyed map sharded for
// scalability. Shard selection hashes keys with xxh3.
package registry

import (
	"runtime"
	"sync"

	"github.com/zeebo/xxh3"
)

const maxShards = 64

// shard holds one slice of the key space behind its own lock
type shard[V any] struct {
	sync.RWMutex
	m map[string]V
}

// Map is a concurrent map sharded by key hash
type Map[V any] struct {
	shards []*shard[V]
}

// New creates a Map sized to the number of usable CPUs.
func New[V any]() *Map[V] {
	numShards := calculateNumShards()
	shards := make([]*shard[V], numShards)
	for i := range numShards {
		shards[i] = &shard[V]{
			m: make(map[string]V),
		}
	}
	return &Map[V]{shards: shards}
}

// Load returns the value stored for the given key
func (s *Map[V]) Load(key string) (V, bool) {
	shard := s.getShard(key)
	shard.RLock()
	val, ok := shard.m[key]
	shard.RUnlock()
	return val, ok
}

// Store adds a key/value pair to the map
func (s *Map[V]) Store(key string, value V) {
	shard := s.getShard(key)
	shard.Lock()
	shard.m[key] = value
	shard.Unlock()
}

// LoadOrStore stores the value when the key is absent. It returns the value
// that is in the map after the call and whether it was already present.
func (s *Map[V]) LoadOrStore(key string, value V) (V, bool) {
	shard := s.getShard(key)
	shard.Lock()
	defer shard.Unlock()
	if existing, ok := shard.m[key]; ok {
		return existing, true
	}
	shard.m[key] = value
	return value, false
}

// Delete removes the given key from the map
func (s *Map[V]) Delete(key string) {
	shard := s.getShard(key)
	shard.Lock()
	delete(shard.m, key)
	shard.Unlock()
}

// Len returns the total number of entries
func (s *Map[V]) Len() int {
	count := 0
	for _, shard := range s.shards {
		shard.RLock()
		count += len(shard.m)
		shard.RUnlock()
	}
	return count
}

// Range iterates over the map entries. The iteration order is unspecified and
// entries stored or deleted concurrently may or may not be visited.
func (s *Map[V]) Range(f func(key string, value V)) {
	for _, shard := range s.shards {
		shard.RLock()
		for k, v := range shard.m {
			f(k, v)
		}
		shard.RUnlock()
	}
}

// Values returns a snapshot of all the values in the map
func (s *Map[V]) Values() []V {
	out := make([]V, 0, s.Len())
	s.Range(func(_ string, value V) {
		out = append(out, value)
	})
	return out
}

// Reset removes all entries
func (s *Map[V]) Reset() {
	for _, shard := range s.shards {
		shard.Lock()
		shard.m = make(map[string]V)
		shard.Unlock()
	}
}

// getShard returns the shard owning the given key
func (s *Map[V]) getShard(key string) *shard[V] {
	hash := xxh3.HashString(key) % uint64(len(s.shards))
	return s.shards[int(hash)]
}

// calculateNumShards returns the total number of shards to use
func calculateNumShards() int {
	optimalShards := runtime.NumCPU() * 4
	if optimalShards > maxShards {
		return maxShards
	}
	if optimalShards < 1 {
		return 1
	}
	return optimalShards
}
