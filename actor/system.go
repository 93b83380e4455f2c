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
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/spindlekit/spindle/eventstream"
	"github.com/spindlekit/spindle/internal/registry"
	"github.com/spindlekit/spindle/log"
)

// System owns a set of named actors and the machinery they share: the
// executor they run on, the logger, the events stream and the messages
// scheduler. Actors spawned by a System are registered under unique names
// until they stop.
type System struct {
	name     string
	logger   log.Logger
	executor Executor

	actors       *registry.Map[*PID]
	eventsStream eventstream.Stream
	scheduler    *scheduler

	started     *atomic.Bool
	startedAt   *atomic.Time
	deadletters *atomic.Int64
}

// NewSystem creates an actor System with the given name. The name is
// required; options configure the logger and the executor.
func NewSystem(name string, opts ...Option) (*System, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	s := &System{
		name:         name,
		logger:       log.NewZap(log.ErrorLevel),
		executor:     NewGoExecutor(),
		actors:       registry.New[*PID](),
		eventsStream: eventstream.New(),
		started:      atomic.NewBool(false),
		startedAt:    atomic.NewTime(time.Time{}),
		deadletters:  atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	s.scheduler = newScheduler(s.logger)
	return s, nil
}

// Name returns the system name.
func (s *System) Name() string {
	return s.name
}

// Logger returns the system logger.
func (s *System) Logger() log.Logger {
	return s.logger
}

// Start starts the system. It must be called before any Spawn.
func (s *System) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	s.startedAt.Store(time.Now())
	s.scheduler.Start(ctx)
	s.logger.Infof("%s started", s.name)
	return nil
}

// Stop gracefully shuts the system down: every registered actor drains its
// mailbox and stops; stop errors are collected. The events stream closes
// last so subscribers observe the final lifecycle events.
func (s *System) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return ErrSystemNotStarted
	}

	s.scheduler.Stop(ctx)

	var mu sync.Mutex
	var errs error
	eg := new(errgroup.Group)
	for _, pid := range s.actors.Values() {
		pid := pid
		eg.Go(func() error {
			if err := s.stopActor(ctx, pid); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("actor=(%s): %w", pid.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	s.actors.Reset()
	s.eventsStream.Close()
	s.logger.Infof("%s stopped", s.name)
	return errs
}

// stopActor gracefully stops one actor. A veto spends the actor's single
// reversal, so the second request always goes through.
func (s *System) stopActor(ctx context.Context, pid *PID) error {
	vetoed, err := pid.stopGracefully(ctx)
	if err != nil {
		return err
	}
	if vetoed {
		if _, err := pid.stopGracefully(ctx); err != nil {
			return err
		}
	}
	return pid.join(ctx)
}

// Spawn creates and starts an actor under the given name and returns the
// caller's strong address on it. Names are unique within the system;
// spawning a name that is already registered fails with
// ErrActorAlreadyExists.
func (s *System) Spawn(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*Address, error) {
	if !s.started.Load() {
		return nil, ErrSystemNotStarted
	}

	config := newSpawnConfig(opts...)
	pidOpts := []pidOption{
		withExecutor(s.executor),
		withLogger(s.logger),
		withEventsStream(s.eventsStream),
		withInitMaxRetries(config.initMaxRetries),
		withInitTimeout(config.initTimeout),
		withDeadlettersCounter(s.deadletters),
	}
	if config.mailbox != nil {
		pidOpts = append(pidOpts, withMailbox(config.mailbox))
	}

	pid := newPID(name, actor, pidOpts...)
	if _, exists := s.actors.LoadOrStore(name, pid); exists {
		return nil, NewErrActorAlreadyExists(name)
	}

	if err := pid.start(ctx); err != nil {
		s.actors.Delete(name)
		return nil, err
	}

	// unregister once the actor has fully stopped, whatever stopped it
	s.executor.Spawn(func() {
		<-pid.done
		s.actors.Delete(name)
	})

	return newAddress(pid), nil
}

// SpawnFunc creates and starts an actor from a message-handling closure.
func (s *System) SpawnFunc(ctx context.Context, name string, receiveFunc ReceiveFunc, opts ...FuncOption) (*Address, error) {
	config := newFuncConfig(opts...)
	return s.Spawn(ctx, name, newFuncActor(receiveFunc, config))
}

// ActorOf returns a weak address on the named actor. It fails with
// ErrActorNotFound when no live actor is registered under the name.
func (s *System) ActorOf(name string) (*WeakAddress, error) {
	pid, ok := s.actors.Load(name)
	if !ok {
		return nil, NewErrActorNotFound(name)
	}
	return &WeakAddress{pid: pid}, nil
}

// Kill immediately stops the named actor, discarding its queued messages.
func (s *System) Kill(ctx context.Context, name string) error {
	pid, ok := s.actors.Load(name)
	if !ok {
		return NewErrActorNotFound(name)
	}
	pid.requestStop(stopImmediately)
	return pid.join(ctx)
}

// TellAfter sends the given message to the addressed actor once, after the
// delay.
func (s *System) TellAfter(message any, to *WeakAddress, delay time.Duration) error {
	return s.scheduler.ScheduleOnce(message, to, delay)
}

// TellRepeatedly sends the given message to the addressed actor at the given
// interval until the actor disconnects or the system stops.
func (s *System) TellRepeatedly(message any, to *WeakAddress, interval time.Duration) error {
	return s.scheduler.Schedule(message, to, interval)
}

// Subscribe registers a pull-based subscriber on the given topics;
// TopicLifecycle and TopicDeadletter are used when no topic is named. The
// subscriber must be disposed of with Unsubscribe.
func (s *System) Subscribe(topics ...string) (eventstream.Subscriber, error) {
	if !s.started.Load() {
		return nil, ErrSystemNotStarted
	}
	if len(topics) == 0 {
		topics = []string{TopicLifecycle, TopicDeadletter}
	}
	sub := s.eventsStream.AddSubscriber()
	for _, topic := range topics {
		s.eventsStream.Subscribe(sub, topic)
	}
	return sub, nil
}

// Unsubscribe removes the subscriber from every topic and shuts it down.
func (s *System) Unsubscribe(sub eventstream.Subscriber) {
	s.eventsStream.RemoveSubscriber(sub)
}

// Metric returns a point-in-time snapshot of the system counters.
func (s *System) Metric() *Metric {
	var uptime time.Duration
	if startedAt := s.startedAt.Load(); !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}
	return &Metric{
		actorsCount:      int64(s.actors.Len()),
		deadlettersCount: s.deadletters.Load(),
		uptime:           uptime,
	}
}
