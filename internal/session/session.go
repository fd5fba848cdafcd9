package session

import (
	"errors"
	"time"
)

// State is the derived mode of a BlockingSession.
type State string

const (
	StateUnblocked State = "unblocked"
	StateBlocking  State = "blocking"
	StatePaused    State = "paused"
)

// BlockingSession is the single persisted record of the blocker.
// Absolute times are stored so alarms can be re-armed after a restart.
type BlockingSession struct {
	SessionID          string
	IsBlocking         bool
	BlockingEndTime    *time.Time
	BlockingDuration   *time.Duration
	BlockingElapsed    time.Duration
	TempUnblockActive  bool
	TempUnblockEndTime *time.Time
}

// Unblocked returns the default record with no active session.
func Unblocked() BlockingSession {
	return BlockingSession{}
}

// NewBlocking returns a fresh session that ends at now+length.
func NewBlocking(id string, now time.Time, length time.Duration) BlockingSession {
	end := now.Add(length)
	return BlockingSession{
		SessionID:        id,
		IsBlocking:       true,
		BlockingEndTime:  &end,
		BlockingDuration: &length,
	}
}

func (s BlockingSession) State() State {
	switch {
	case !s.IsBlocking:
		return StateUnblocked
	case s.TempUnblockActive:
		return StatePaused
	default:
		return StateBlocking
	}
}

// Duration returns the configured session length, or zero when unblocked.
func (s BlockingSession) Duration() time.Duration {
	if s.BlockingDuration == nil {
		return 0
	}
	return *s.BlockingDuration
}

// Remaining returns the blocking time left at now. While paused the
// countdown is frozen at Duration - Elapsed.
func (s BlockingSession) Remaining(now time.Time) time.Duration {
	if !s.IsBlocking {
		return 0
	}
	if s.TempUnblockActive || s.BlockingEndTime == nil {
		return max(s.Duration()-s.BlockingElapsed, 0)
	}
	return max(s.BlockingEndTime.Sub(now), 0)
}

// PauseRemaining returns the time left in the current temp unblock.
func (s BlockingSession) PauseRemaining(now time.Time) time.Duration {
	if !s.TempUnblockActive || s.TempUnblockEndTime == nil {
		return 0
	}
	return max(s.TempUnblockEndTime.Sub(now), 0)
}

// ElapsedAt returns the blocking time consumed at now, clamped to
// [0, Duration].
func (s BlockingSession) ElapsedAt(now time.Time) time.Duration {
	if !s.IsBlocking {
		return 0
	}
	if s.TempUnblockActive || s.BlockingEndTime == nil {
		return s.BlockingElapsed
	}
	elapsed := s.Duration() - s.BlockingEndTime.Sub(now)
	return min(max(elapsed, 0), s.Duration())
}

// Progress returns the fraction of the session consumed at now.
func (s BlockingSession) Progress(now time.Time) float64 {
	total := s.Duration()
	if total <= 0 {
		return 0
	}
	return float64(s.ElapsedAt(now)) / float64(total)
}

// Validate reports records that break the session invariants.
func (s BlockingSession) Validate() error {
	if !s.IsBlocking {
		if s.TempUnblockActive || s.BlockingEndTime != nil || s.BlockingDuration != nil ||
			s.TempUnblockEndTime != nil || s.BlockingElapsed != 0 {
			return errors.New("unblocked record carries session fields")
		}
		return nil
	}
	if s.BlockingEndTime == nil || s.BlockingDuration == nil {
		return errors.New("blocking record without end time or duration")
	}
	if *s.BlockingDuration <= 0 {
		return errors.New("blocking duration must be positive")
	}
	if s.BlockingElapsed < 0 || s.BlockingElapsed > *s.BlockingDuration {
		return errors.New("blocking elapsed outside [0, duration]")
	}
	if s.TempUnblockActive != (s.TempUnblockEndTime != nil) {
		return errors.New("temp unblock flag and end time disagree")
	}
	return nil
}
