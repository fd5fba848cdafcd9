// Package controller owns the blocking session state machine. Commands and
// alarm events are serialized; each one loads the stored record, applies any
// overdue transitions, applies its own transition, toggles the rule gateway,
// saves, and re-arms the single pending alarm.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"site_blocker/internal/gateway"
	"site_blocker/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxDuration bounds a single session or pause.
const DefaultMaxDuration = 7 * 24 * time.Hour

// alarmRetryDelay spaces out retries of an alarm whose transition failed.
const alarmRetryDelay = time.Minute

// Store persists the BlockingSession record.
type Store interface {
	Load(ctx context.Context) (session.BlockingSession, error)
	Save(ctx context.Context, s session.BlockingSession) error
}

// Scheduler arms named fire-once alarms at absolute times.
type Scheduler interface {
	ScheduleAt(name string, at time.Time)
	Cancel(name string)
}

// Options tune the controller. Zero values pick defaults.
type Options struct {
	// MaxDuration caps the minutes accepted by StartBlocking and TempUnblock.
	MaxDuration time.Duration

	// AllowRestart lets StartBlocking replace an active session instead of
	// rejecting it.
	AllowRestart bool

	Clock func() time.Time
	NewID func() string
}

type Controller struct {
	mu        sync.Mutex
	store     Store
	gateway   gateway.Gateway
	scheduler Scheduler
	options   Options
	log       *zap.Logger
}

func New(store Store, gw gateway.Gateway, scheduler Scheduler, options Options, log *zap.Logger) *Controller {
	if options.MaxDuration <= 0 {
		options.MaxDuration = DefaultMaxDuration
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.NewID == nil {
		options.NewID = func() string { return uuid.New().String() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:     store,
		gateway:   gw,
		scheduler: scheduler,
		options:   options,
		log:       log,
	}
}

// StartBlocking begins a session of the given length in minutes.
func (c *Controller) StartBlocking(ctx context.Context, minutes float64) (session.BlockingSession, error) {
	length, err := durationFromMinutes(minutes, c.options.MaxDuration)
	if err != nil {
		return session.BlockingSession{}, err
	}

	return c.transition(ctx, func(cur session.BlockingSession, now time.Time) (session.BlockingSession, string, error) {
		if cur.IsBlocking && !c.options.AllowRestart {
			return cur, "", fmt.Errorf("%w: a blocking session is already active", ErrInvalidTransition)
		}
		return session.NewBlocking(c.options.NewID(), now, length), stepStart, nil
	})
}

// TempUnblock pauses the running session for the given minutes, or moves the
// end of the current pause to now+minutes.
func (c *Controller) TempUnblock(ctx context.Context, minutes float64) (session.BlockingSession, error) {
	length, err := durationFromMinutes(minutes, c.options.MaxDuration)
	if err != nil {
		return session.BlockingSession{}, err
	}

	return c.transition(ctx, func(cur session.BlockingSession, now time.Time) (session.BlockingSession, string, error) {
		return pause(cur, now, length)
	})
}

// Resume ends the current pause early.
func (c *Controller) Resume(ctx context.Context) (session.BlockingSession, error) {
	return c.transition(ctx, func(cur session.BlockingSession, now time.Time) (session.BlockingSession, string, error) {
		if cur.State() != session.StatePaused {
			return cur, "", fmt.Errorf("%w: blocking is not paused", ErrInvalidTransition)
		}
		return resume(cur, now), stepResume, nil
	})
}

// GetStatus returns the stored record as is. It has no side effects.
func (c *Controller) GetStatus(ctx context.Context) (session.BlockingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// HandleAlarm processes a fired alarm. Alarms that are stale or early are
// harmless: only transitions that are actually due are applied, and the alarm
// for the resulting state is re-armed either way.
func (c *Controller) HandleAlarm(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.load(ctx)
	if err != nil {
		c.log.Error("alarm: load session failed", zap.String("alarm", name), zap.Error(err))
		c.scheduler.ScheduleAt(name, c.options.Clock().Add(alarmRetryDelay))
		return err
	}

	next, steps := catchUp(stored, c.options.Clock())
	if len(steps) == 0 {
		c.log.Debug("alarm: nothing due", zap.String("alarm", name), zap.String("state", string(stored.State())))
		c.arm(stored)
		return nil
	}

	if err := c.apply(ctx, stored, next); err != nil {
		c.log.Error("alarm: transition failed",
			zap.String("alarm", name),
			zap.Strings("steps", steps),
			zap.Error(err),
		)
		c.scheduler.ScheduleAt(name, c.options.Clock().Add(alarmRetryDelay))
		return err
	}
	c.logSteps(stored, next, steps)
	return nil
}

// Reconcile brings the gateway and the alarms in line with the stored record.
// It runs once at startup, before any command is served.
func (c *Controller) Reconcile(ctx context.Context) (session.BlockingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.load(ctx)
	if err != nil {
		return session.BlockingSession{}, err
	}

	cur := stored
	if err := cur.Validate(); err != nil {
		c.log.Warn("reconcile: stored session is inconsistent, resetting",
			zap.String("session_id", stored.SessionID),
			zap.Error(err),
		)
		cur = session.Unblocked()
	}

	next, steps := catchUp(cur, c.options.Clock())
	if err := c.apply(ctx, stored, next); err != nil {
		return stored, err
	}
	c.logSteps(stored, next, steps)
	c.log.Info("reconciled session",
		zap.String("session_id", next.SessionID),
		zap.String("state", string(next.State())),
		zap.Bool("rules_active", rulesActive(next)),
	)
	return next, nil
}

type transitionFunc func(cur session.BlockingSession, now time.Time) (session.BlockingSession, string, error)

func (c *Controller) transition(ctx context.Context, fn transitionFunc) (session.BlockingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.load(ctx)
	if err != nil {
		return session.BlockingSession{}, err
	}

	now := c.options.Clock()
	cur, steps := catchUp(stored, now)

	next, step, opErr := fn(cur, now)
	if opErr != nil {
		// Overdue transitions still land even when the command is rejected.
		if len(steps) > 0 {
			if err := c.apply(ctx, stored, cur); err != nil {
				return stored, err
			}
			c.logSteps(stored, cur, steps)
		}
		c.log.Info("command rejected",
			zap.String("state", string(cur.State())),
			zap.Error(opErr),
		)
		return cur, opErr
	}

	if err := c.apply(ctx, stored, next); err != nil {
		return stored, err
	}
	c.logSteps(stored, next, append(steps, step))
	return next, nil
}

// apply enforces next on the gateway, saves it and arms its alarm. On a save
// failure the gateway is put back to match prev, which is still what storage
// holds.
func (c *Controller) apply(ctx context.Context, prev, next session.BlockingSession) error {
	if err := c.setRules(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}

	if err := c.store.Save(ctx, next); err != nil {
		if rbErr := c.setRules(ctx, prev); rbErr != nil {
			c.log.Error("rollback of rule gateway failed",
				zap.Bool("rules_active", rulesActive(prev)),
				zap.Error(rbErr),
			)
		}
		return fmt.Errorf("%w: save session: %w", ErrPersistence, err)
	}

	c.arm(next)
	return nil
}

func (c *Controller) setRules(ctx context.Context, s session.BlockingSession) error {
	if rulesActive(s) {
		return c.gateway.Enable(ctx)
	}
	return c.gateway.Disable(ctx)
}

// arm leaves at most one alarm pending, matching the state of s.
func (c *Controller) arm(s session.BlockingSession) {
	c.scheduler.Cancel(AlarmEndBlocking)
	c.scheduler.Cancel(AlarmEndTempUnblock)

	switch s.State() {
	case session.StateBlocking:
		c.scheduler.ScheduleAt(AlarmEndBlocking, *s.BlockingEndTime)
	case session.StatePaused:
		c.scheduler.ScheduleAt(AlarmEndTempUnblock, *s.TempUnblockEndTime)
	}
}

func (c *Controller) load(ctx context.Context) (session.BlockingSession, error) {
	s, err := c.store.Load(ctx)
	if err != nil {
		return session.BlockingSession{}, fmt.Errorf("%w: load session: %w", ErrPersistence, err)
	}
	return s, nil
}

func (c *Controller) logSteps(prev, next session.BlockingSession, steps []string) {
	if len(steps) == 0 {
		return
	}
	id := next.SessionID
	if id == "" {
		id = prev.SessionID
	}
	c.log.Info("session transition",
		zap.String("session_id", id),
		zap.Strings("steps", steps),
		zap.String("from", string(prev.State())),
		zap.String("to", string(next.State())),
		zap.Duration("elapsed", next.BlockingElapsed),
		zap.Duration("duration", next.Duration()),
	)
}

// IsClientError reports whether err was caused by the request rather than
// by storage or the gateway.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidTransition)
}
