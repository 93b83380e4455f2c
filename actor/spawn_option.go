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

import "time"

// spawnConfig captures per-actor settings applied at spawn.
type spawnConfig struct {
	mailbox        Mailbox
	initMaxRetries int
	initTimeout    time.Duration
}

// newSpawnConfig creates an instance of spawnConfig.
func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		initMaxRetries: DefaultInitMaxRetries,
		initTimeout:    DefaultInitTimeout,
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies to a spawn configuration.
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

// spawnOption implements the SpawnOption interface.
type spawnOption func(config *spawnConfig)

// Apply implementation
func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithMailbox sets the mailbox the actor reads from. The default is an
// unbounded mailbox; use NewBoundedMailbox for sender backpressure.
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = mailbox
	})
}

// WithInitMaxRetries sets the number of PreStart attempts before Spawn gives
// up.
func WithInitMaxRetries(retries int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initMaxRetries = retries
	})
}

// WithInitTimeout bounds the whole PreStart retry sequence.
func WithInitTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initTimeout = timeout
	})
}
