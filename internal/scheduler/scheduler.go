// Package scheduler drives the spaced-repetition review lifecycle. Each
// material owns at most one pending timer; firing a timer runs one full
// publish, await-reply, grade, reschedule cycle and re-arms the next one.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast"
	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

const (
	// DefaultFloorInterval is the minimum review interval. Incorrect answers
	// reset the schedule back to it.
	DefaultFloorInterval = 3 * time.Hour
	// DefaultReplyWindow bounds how long a question waits for a reply.
	DefaultReplyWindow = 10 * time.Minute
	// DefaultMinimumDelay is the clamp applied to fire times already in the
	// past, so a late timer still makes forward progress without a tight
	// retry loop.
	DefaultMinimumDelay = time.Second
)

// Options tune the review cycle.
type Options struct {
	FloorInterval time.Duration
	ReplyWindow   time.Duration
	MinimumDelay  time.Duration
}

func (o Options) withDefaults() Options {
	if o.FloorInterval <= 0 {
		o.FloorInterval = DefaultFloorInterval
	}
	if o.ReplyWindow <= 0 {
		o.ReplyWindow = DefaultReplyWindow
	}
	if o.MinimumDelay <= 0 {
		o.MinimumDelay = DefaultMinimumDelay
	}
	return o
}

type timerKey struct {
	ownerID    string
	materialID string
}

// Scheduler owns the per-material review timers and the cycle body they
// invoke. All collaborators are injected so tests can substitute doubles.
type Scheduler struct {
	materials   material.Repository
	credentials identity.Resolver
	publisher   broadcast.Publisher
	listener    broadcast.ReplyListener
	grader      inference.Grader
	location    *time.Location
	opts        Options
	logger      *slog.Logger

	// now is replaceable in tests. All interval math goes through it so the
	// operational timezone is applied consistently.
	now func() time.Time

	mu       sync.Mutex
	timers   map[timerKey]*time.Timer
	inFlight map[timerKey]struct{}
}

// New creates a Scheduler. The location fixes the operational timezone for
// all "now" computations.
func New(
	materials material.Repository,
	credentials identity.Resolver,
	publisher broadcast.Publisher,
	listener broadcast.ReplyListener,
	grader inference.Grader,
	location *time.Location,
	opts Options,
) *Scheduler {
	return &Scheduler{
		materials:   materials,
		credentials: credentials,
		publisher:   publisher,
		listener:    listener,
		grader:      grader,
		location:    location,
		opts:        opts.withDefaults(),
		logger:      slog.Default(),
		now:         time.Now,
		timers:      make(map[timerKey]*time.Timer),
		inFlight:    make(map[timerKey]struct{}),
	}
}

func (s *Scheduler) nowIn() time.Time {
	return s.now().In(s.location)
}

// Arm schedules a fire for the material no earlier than at. A fire time in
// the past is clamped to now plus the minimum delay. Re-arming replaces any
// previously pending timer for the same material, so at most one timer
// exists per material.
func (s *Scheduler) Arm(ownerID, materialID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arm(timerKey{ownerID: ownerID, materialID: materialID}, at)
}

// ArmIdle arms a timer only when the material has neither a pending timer
// nor a cycle in flight. It reports whether a timer was armed. Periodic
// rescans use it so they never race a running cycle into a duplicate.
func (s *Scheduler) ArmIdle(ownerID, materialID string, at time.Time) bool {
	key := timerKey{ownerID: ownerID, materialID: materialID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[key]; ok {
		return false
	}
	if _, ok := s.inFlight[key]; ok {
		return false
	}
	s.arm(key, at)
	return true
}

// arm requires s.mu to be held.
func (s *Scheduler) arm(key timerKey, at time.Time) {
	delay := at.Sub(s.nowIn())
	if delay < s.opts.MinimumDelay {
		delay = s.opts.MinimumDelay
	}

	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.onTimer(key)
	})
	s.logger.Debug("armed review timer",
		"owner_id", key.ownerID,
		"material_id", key.materialID,
		"fire_in", delay,
	)
}

func (s *Scheduler) onTimer(key timerKey) {
	s.mu.Lock()
	delete(s.timers, key)
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	// Cycle failures stay inside the cycle; nothing may escape the timer
	// goroutine or touch other materials' timers.
	if err := s.Fire(context.Background(), key.ownerID, key.materialID); err != nil {
		s.logger.Error("review cycle aborted",
			"owner_id", key.ownerID,
			"material_id", key.materialID,
			"error", err,
		)
	}
}

// Stop cancels every pending timer. In-flight cycles run to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

// PendingTimers returns the number of armed timers.
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
