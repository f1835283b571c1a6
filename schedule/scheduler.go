// Package schedule provides adaptive debounce and throttle primitives whose
// timing constants derive from the device profile. Interactive recomputation
// (slider drags, pan gestures) funnels through a Scheduler so redraw rates
// match what the device can sustain.
package schedule

import (
	"math"
	"sync"
	"time"

	"textbehind/device"
)

// Timing defaults by tier. High-memory devices (>= 4 GB) redraw at ~30 Hz,
// low-end devices at ~10 Hz.
const (
	lowEndDebounce  = 300 * time.Millisecond
	defaultDebounce = 200 * time.Millisecond
	fastDebounce    = 100 * time.Millisecond

	lowEndThrottle  = 100 * time.Millisecond
	defaultThrottle = 50 * time.Millisecond
	fastThrottle    = 33 * time.Millisecond

	highMemoryMB = 4096

	// smartTolerance is the numeric distance below which two values are
	// treated as unchanged by SmartDebounce.
	smartTolerance = 1.0
)

// Scheduler coalesces bursts of interactive updates. Each primitive is
// keyed by a caller-chosen identifier so independent controls do not cancel
// each other. Call ClearAll on teardown so no callback fires after the
// owning session is gone.
type Scheduler struct {
	debounceDelay    time.Duration
	throttleInterval time.Duration

	mu       sync.Mutex
	epoch    uint64 // bumped by ClearAll; stale timer callbacks are dropped
	timers   map[string]*time.Timer
	lastRun  map[string]time.Time
	lastVals map[string]float64

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a scheduler tuned for the given device profile.
func New(profile device.DeviceProfile) *Scheduler {
	s := &Scheduler{
		debounceDelay:    defaultDebounce,
		throttleInterval: defaultThrottle,
		timers:           make(map[string]*time.Timer),
		lastRun:          make(map[string]time.Time),
		lastVals:         make(map[string]float64),
		now:              time.Now,
	}
	switch {
	case profile.Tier == device.TierLowEnd:
		s.debounceDelay = lowEndDebounce
		s.throttleInterval = lowEndThrottle
	case profile.EstimatedMemoryMB >= highMemoryMB:
		s.debounceDelay = fastDebounce
		s.throttleInterval = fastThrottle
	}
	return s
}

// DebounceDelay returns the adaptive debounce delay.
func (s *Scheduler) DebounceDelay() time.Duration { return s.debounceDelay }

// ThrottleInterval returns the adaptive throttle interval.
func (s *Scheduler) ThrottleInterval() time.Duration { return s.throttleInterval }

// Debounce schedules fn to run after the adaptive delay, cancelling any
// pending run for the same id. Only the last call within the window fires.
func (s *Scheduler) Debounce(id string, fn func()) {
	s.DebounceFor(id, fn, s.debounceDelay)
}

// DebounceFor is Debounce with an explicit delay.
func (s *Scheduler) DebounceFor(id string, fn func(), delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	epoch := s.epoch
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Throttle runs fn immediately if at least the adaptive interval has passed
// since the last execution for id; otherwise the call is dropped. Dropped
// calls are not queued.
func (s *Scheduler) Throttle(id string, fn func()) {
	s.ThrottleFor(id, fn, s.throttleInterval)
}

// ThrottleFor is Throttle with an explicit interval.
func (s *Scheduler) ThrottleFor(id string, fn func(), interval time.Duration) {
	s.mu.Lock()
	now := s.now()
	if last, ok := s.lastRun[id]; ok && now.Sub(last) < interval {
		s.mu.Unlock()
		return
	}
	s.lastRun[id] = now
	s.mu.Unlock()
	fn()
}

// SmartDebounce behaves like Debounce but consults value first: when it is
// within one unit of the last value recorded for id, the call is skipped
// outright and no timer is started.
func (s *Scheduler) SmartDebounce(id string, fn func(), value float64) {
	s.SmartDebounceFor(id, fn, value, s.debounceDelay)
}

// SmartDebounceFor is SmartDebounce with an explicit delay.
func (s *Scheduler) SmartDebounceFor(id string, fn func(), value float64, delay time.Duration) {
	s.mu.Lock()
	if last, ok := s.lastVals[id]; ok && math.Abs(value-last) < smartTolerance {
		s.mu.Unlock()
		return
	}
	s.lastVals[id] = value
	s.mu.Unlock()
	s.DebounceFor(id, fn, delay)
}

// ClearAll cancels every pending timer and forgets all recorded run times
// and values. A timer callback already racing ClearAll observes the epoch
// bump and drops itself, so nothing fires after ClearAll returns.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.lastRun = make(map[string]time.Time)
	s.lastVals = make(map[string]float64)
}
