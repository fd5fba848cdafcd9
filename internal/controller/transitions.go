package controller

import (
	"fmt"
	"math"
	"time"

	"site_blocker/internal/session"
)

// Alarm names armed on the scheduler.
const (
	AlarmEndBlocking    = "endBlocking"
	AlarmEndTempUnblock = "endTempUnblock"
)

// Transition labels used in logs.
const (
	stepStart  = "start"
	stepPause  = "pause"
	stepExtend = "extend"
	stepResume = "resume"
	stepExpire = "expire"
)

func durationFromMinutes(minutes float64, limit time.Duration) (time.Duration, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0, fmt.Errorf("%w: minutes must be a positive number, got %v", ErrInvalidInput, minutes)
	}
	if minutes > limit.Minutes() {
		return 0, fmt.Errorf("%w: minutes must not exceed %v, got %v", ErrInvalidInput, limit.Minutes(), minutes)
	}
	// Storage keeps whole milliseconds.
	d := time.Duration(minutes * float64(time.Minute))
	if d < time.Millisecond {
		return 0, fmt.Errorf("%w: minutes too small, got %v", ErrInvalidInput, minutes)
	}
	return d, nil
}

// pause freezes the countdown, or moves the pause end when already paused.
func pause(s session.BlockingSession, now time.Time, length time.Duration) (session.BlockingSession, string, error) {
	switch s.State() {
	case session.StateUnblocked:
		return s, "", fmt.Errorf("%w: no active blocking session", ErrInvalidTransition)
	case session.StatePaused:
		end := now.Add(length)
		s.TempUnblockEndTime = &end
		return s, stepExtend, nil
	}

	// duration - (end - now) is the total consumed so far, so it replaces
	// the stored value rather than adding to it.
	s.BlockingElapsed = s.ElapsedAt(now)
	end := now.Add(length)
	s.TempUnblockActive = true
	s.TempUnblockEndTime = &end
	return s, stepPause, nil
}

// resume restarts the countdown with whatever blocking time is left.
func resume(s session.BlockingSession, now time.Time) session.BlockingSession {
	remaining := max(s.Duration()-s.BlockingElapsed, 0)
	end := now.Add(remaining)
	s.BlockingEndTime = &end
	s.TempUnblockActive = false
	s.TempUnblockEndTime = nil
	return s
}

// catchUp applies transitions whose alarm time has already passed.
func catchUp(s session.BlockingSession, now time.Time) (session.BlockingSession, []string) {
	var steps []string
	if s.State() == session.StatePaused && !now.Before(*s.TempUnblockEndTime) {
		s = resume(s, now)
		steps = append(steps, stepResume)
	}
	if s.State() == session.StateBlocking && !now.Before(*s.BlockingEndTime) {
		s = session.Unblocked()
		steps = append(steps, stepExpire)
	}
	return s, steps
}

func rulesActive(s session.BlockingSession) bool {
	return s.State() == session.StateBlocking
}
