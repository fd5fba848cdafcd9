package timer

import (
	"sync"
	"time"
)

// Scheduler arms named, fire-once alarms at absolute times. Scheduling a
// name that is already armed replaces the earlier alarm.
type Scheduler struct {
	mu      sync.Mutex
	alarms  map[string]*alarm
	now     func() time.Time
	onFire  func(name string)
	stopped bool
}

type alarm struct {
	at    time.Time
	timer *time.Timer
}

func New(onFire func(name string)) *Scheduler {
	return &Scheduler{
		alarms: make(map[string]*alarm),
		now:    time.Now,
		onFire: onFire,
	}
}

// SetClock overrides the clock used to turn absolute times into delays.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetHandler replaces the callback invoked when an alarm fires.
func (s *Scheduler) SetHandler(onFire func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFire = onFire
}

func (s *Scheduler) ScheduleAt(name string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.cancelLocked(name)

	a := &alarm{at: at}
	delay := max(at.Sub(s.now()), 0)
	a.timer = time.AfterFunc(delay, func() { s.fire(name, a) })
	s.alarms[name] = a
}

func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(name)
}

// Pending reports the firing time of an armed alarm.
func (s *Scheduler) Pending(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[name]
	if !ok {
		return time.Time{}, false
	}
	return a.at, true
}

// Stop cancels every alarm; later ScheduleAt calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.alarms {
		s.cancelLocked(name)
	}
	s.stopped = true
}

func (s *Scheduler) cancelLocked(name string) {
	if a, ok := s.alarms[name]; ok {
		a.timer.Stop()
		delete(s.alarms, name)
	}
}

func (s *Scheduler) fire(name string, a *alarm) {
	s.mu.Lock()
	// A replaced or cancelled alarm may still fire once Stop loses the race.
	if s.alarms[name] != a {
		s.mu.Unlock()
		return
	}
	delete(s.alarms, name)
	handler := s.onFire
	s.mu.Unlock()

	if handler != nil {
		handler(name)
	}
}
