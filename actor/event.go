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

const (
	// TopicLifecycle carries ActorStarted and ActorStopped events.
	TopicLifecycle = "spindle.lifecycle"
	// TopicDeadletter carries Deadletter events for messages that were
	// accepted but discarded before reaching their actor.
	TopicDeadletter = "spindle.deadletters"
)

// ActorStarted is published on TopicLifecycle when an actor completes
// initialization and enters Running.
type ActorStarted struct {
	Name string
	At   time.Time
}

// ActorStopped is published on TopicLifecycle when an actor reaches Stopped.
type ActorStopped struct {
	Name string
	At   time.Time
}

// Deadletter is published on TopicDeadletter for every accepted envelope
// discarded by an immediate stop. Sends rejected by a closed mailbox are
// reported to the sender directly and never become deadletters. The sender
// of a discarded envelope, if it was waiting, has already been failed with
// ErrDisconnected.
type Deadletter struct {
	ActorName string
	Message   any
	At        time.Time
}
