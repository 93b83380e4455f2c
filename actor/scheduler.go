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
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/spindlekit/spindle/log"
)

// scheduler delivers delayed and repeated messages to actors. It wraps a
// quartz scheduler whose own logging is turned off; delivery failures are
// reported through the system logger instead.
type scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	logger          log.Logger
}

// newScheduler creates an instance of scheduler.
func newScheduler(logger log.Logger) *scheduler {
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          logger,
	}
}

// Start starts the underlying quartz scheduler.
func (x *scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
}

// Stop clears every scheduled job and waits for the quartz scheduler to wind
// down.
func (x *scheduler) Stop(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started.Load() {
		return
	}
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())
	x.quartzScheduler.Wait(ctx)
}

// ScheduleOnce sends the message to the given address once, after the delay.
func (x *scheduler) ScheduleOnce(message any, to *WeakAddress, delay time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started.Load() {
		return ErrSchedulerNotStarted
	}

	fnJob := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			if err := to.Tell(ctx, message); err != nil {
				x.logger.Warnf("scheduled message to actor=(%s) undeliverable: %v", to.Name(), err)
				return false, err
			}
			return true, nil
		},
	)

	detail := quartz.NewJobDetail(fnJob, quartz.NewJobKey(newJobKey()))
	return x.quartzScheduler.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay))
}

// Schedule sends the message to the given address repeatedly at the given
// interval until the actor disconnects or the scheduler stops.
func (x *scheduler) Schedule(message any, to *WeakAddress, interval time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started.Load() {
		return ErrSchedulerNotStarted
	}

	fnJob := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			if err := to.Tell(ctx, message); err != nil {
				return false, err
			}
			return true, nil
		},
	)

	detail := quartz.NewJobDetail(fnJob, quartz.NewJobKey(newJobKey()))
	return x.quartzScheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(interval))
}

func newJobKey() string {
	return uuid.NewString()
}
