// Package alarm turns reminder slots into armed triggers and restores them
// after process restart. Arming fans out over redundant delivery paths,
// each individually fallible; a missed alarm is degraded service, not a
// fatal error.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotReady    = errors.New("alarm: coordinator not initialized")
	ErrPastTrigger = errors.New("alarm: trigger time already passed")
	ErrAllPaths    = errors.New("alarm: every arm path failed")
)

const waterPrefix = "water_"

// Config narrows the service config to what the coordinator needs.
type Config struct {
	RescheduleDelay time.Duration
	MinLead         time.Duration
	RingTimeout     time.Duration
}

// Coordinator owns the trigger engine, the delivery paths and the
// per-reminder state machine. It is an explicit lifecycle object:
// Init/IsReady/Dispose, with idempotent re-entry.
type Coordinator struct {
	log      *logger.Logger
	repo     planner.Repository
	notifier Notifier
	engine   *Engine
	ringer   *Ringer
	paths    []ArmPath
	ringPath *ringerPath
	cfg      Config

	mu       sync.Mutex
	states   map[string]State
	ready    bool
	disposed bool
	done     chan struct{}
}

func NewCoordinator(log *logger.Logger, repo planner.Repository, notifier Notifier, cfg Config) *Coordinator {
	engine := NewEngine(64)
	ringPath := newRingerPath()

	return &Coordinator{
		log:      log,
		repo:     repo,
		notifier: notifier,
		engine:   engine,
		ringer:   NewRinger(log, notifier, cfg.RingTimeout),
		paths:    []ArmPath{&clockPath{engine: engine}, &visualPath{engine: engine}, ringPath},
		ringPath: ringPath,
		cfg:      cfg,
		states:   make(map[string]State),
	}
}

// Init starts the engine and the dispatch loop. Calling it again is a no-op;
// after Dispose a fresh engine is built so the cycle can repeat.
func (c *Coordinator) Init() {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return
	}
	if c.disposed {
		c.engine = NewEngine(64)
		c.paths[0] = &clockPath{engine: c.engine}
		c.paths[1] = &visualPath{engine: c.engine}
		c.disposed = false
	}
	c.ready = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.engine.Start()
	go c.dispatch()
}

// IsReady -.
func (c *Coordinator) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Dispose stops ringing and the engine. Idempotent.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	if !c.ready {
		c.mu.Unlock()
		return
	}
	c.ready = false
	done := c.done
	c.mu.Unlock()

	c.ringer.Stop()
	c.engine.Stop()
	<-done

	if n := c.engine.Dropped(); n > 0 {
		c.log.Warn("triggers dropped on full dispatch buffer", slog.Uint64("count", n))
	}

	c.mu.Lock()
	c.disposed = true
	c.mu.Unlock()
}

// Arm registers a plan alarm on every path. A path failure lowers delivery
// reliability but does not abort the others or roll anything back; the call
// fails only when no path succeeded or the trigger is in the past.
func (c *Coordinator) Arm(ctx context.Context, p Payload) error {
	if !c.IsReady() {
		return ErrNotReady
	}
	if !p.TriggerAt.After(time.Now()) {
		return ErrPastTrigger
	}

	c.setState(p.ID, StatePlanned)

	var armed int
	for _, path := range c.paths {
		if err := path.Arm(ctx, p); err != nil {
			c.log.Warn("arm path failed",
				slog.String("path", path.Name()),
				slog.String("id", p.ID),
				logger.Err(err),
			)
			continue
		}
		armed++
	}
	if armed == 0 {
		return ErrAllPaths
	}

	c.setState(p.ID, StateArmed)
	return nil
}

// ArmWater registers one water reminder on the visual surface only. The
// trigger never lands closer than MinLead to now.
func (c *Coordinator) ArmWater(ctx context.Context, slot planner.ReminderSlot) error {
	if !c.IsReady() {
		return ErrNotReady
	}

	at := slot.TriggerAt
	if min := time.Now().Add(c.cfg.MinLead); at.Before(min) {
		at = min
	}

	id := waterPrefix + slot.ID
	err := c.engine.Schedule(Trigger{ID: id, Title: slot.Title, TriggerAt: at})
	if err != nil {
		return fmt.Errorf("alarm - ArmWater - engine.Schedule: %w", err)
	}
	c.setState(id, StateArmed)
	return nil
}

// Cancel tears a reminder down on every path before its trigger fires.
func (c *Coordinator) Cancel(ctx context.Context, id string) {
	for _, path := range c.paths {
		if err := path.Cancel(ctx, id); err != nil {
			c.log.Warn("cancel path failed",
				slog.String("path", path.Name()),
				slog.String("id", id),
				logger.Err(err),
			)
		}
	}
	c.transition(id, StateCancelled)
}

// CancelAllWater removes every pending water reminder; the caller arms the
// replacement batch afterwards.
func (c *Coordinator) CancelAllWater() {
	c.engine.CancelPrefix(waterPrefix)

	c.mu.Lock()
	for id, s := range c.states {
		if strings.HasPrefix(id, waterPrefix) && s == StateArmed {
			c.states[id] = StateCancelled
		}
	}
	c.mu.Unlock()
}

// Dismiss stops ringing and removes the ongoing notification. The only
// user-reachable exit from Fired.
func (c *Coordinator) Dismiss(id string) {
	c.ringer.Stop()
	_ = c.notifier.Dismiss("ring_" + id)
	c.transition(id, StateDismissed)
}

// ArmedIDs is the set of pending trigger ids, for inspection and tests.
func (c *Coordinator) ArmedIDs() []string {
	return c.engine.Pending()
}

// StateOf -.
func (c *Coordinator) StateOf(id string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[id]
	return s, ok
}

// Reschedule is the startup pass: wait out the configured delay, then load
// today's plans for every known user and re-arm each slot still in the
// future. Cancel-before-arm keyed by slot id keeps the pass idempotent.
// Per-user failures are logged and skipped.
func (c *Coordinator) Reschedule(ctx context.Context) error {
	if !c.IsReady() {
		return ErrNotReady
	}

	select {
	case <-time.After(c.cfg.RescheduleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	now := time.Now()
	today := now.Format("2006-01-02")

	users, err := c.repo.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("alarm - Reschedule - repo.ListUserIDs: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			plans, err := c.repo.GetAllPlansForDate(ctx, userID, today)
			if err != nil {
				c.log.Warn("reschedule: load plans failed",
					slog.String("user", userID),
					logger.Err(err),
				)
				return nil
			}
			for _, plan := range plans {
				c.rearmPlan(ctx, plan, now)
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Coordinator) rearmPlan(ctx context.Context, plan planner.DaySchedule, now time.Time) {
	for _, slot := range plan.Slots {
		at, ok, err := slot.OccurrenceOn(now)
		if err != nil {
			c.log.Warn("reschedule: bad recurrence",
				slog.String("slot", slot.ID),
				logger.Err(err),
			)
			continue
		}
		if !ok || !at.After(now) {
			continue
		}

		// Water slots stay on the silent surface under the water namespace;
		// re-arming one through the full path set would make it ring.
		if slot.Category == planner.CategoryWater {
			err := c.ArmWater(ctx, planner.ReminderSlot{ID: slot.ID, Title: slot.Title, TriggerAt: at})
			if err != nil {
				c.log.Warn("reschedule: water arm failed",
					slog.String("slot", slot.ID),
					logger.Err(err),
				)
			}
			continue
		}

		c.Cancel(ctx, slot.ID)
		if err := c.Arm(ctx, Payload{ID: slot.ID, Title: slot.Title, TriggerAt: at}); err != nil {
			c.log.Warn("reschedule: arm failed",
				slog.String("slot", slot.ID),
				logger.Err(err),
			)
		}
	}
}

// dispatch consumes fired triggers until the engine closes its channel.
func (c *Coordinator) dispatch() {
	defer close(c.done)

	for t := range c.engine.C() {
		switch {
		case strings.HasPrefix(t.ID, visualPrefix):
			// silent fallback surface for a plan alarm
			_ = c.notifier.Post(Notification{
				ID:    t.ID,
				Title: "Alarm",
				Body:  t.Title,
			})

		case strings.HasPrefix(t.ID, waterPrefix):
			c.transition(t.ID, StateFired)
			_ = c.notifier.Post(Notification{
				ID:    t.ID,
				Title: "Time to drink water",
				Body:  t.Title,
			})

		default:
			c.transition(t.ID, StateFired)
			if c.ringPath.shouldRing(t.ID) {
				c.ringer.Start(t.ID, t.Title)
			}
		}
	}
}

func (c *Coordinator) setState(id string, s State) {
	c.mu.Lock()
	c.states[id] = s
	c.mu.Unlock()
}

func (c *Coordinator) transition(id string, to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.states[id]
	if !ok {
		return
	}
	if !cur.CanTransition(to) {
		return
	}
	c.states[id] = to
}
