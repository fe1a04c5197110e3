package alarm

import (
	"context"
	"sync"
	"time"
)

// Payload is what gets armed: one reminder with an absolute trigger time.
type Payload struct {
	ID        string
	Title     string
	TriggerAt time.Time
}

// ArmPath is one of the redundant delivery paths. Each path arms and
// cancels independently; a failed path never rolls back the others.
type ArmPath interface {
	Name() string
	Arm(ctx context.Context, p Payload) error
	Cancel(ctx context.Context, id string) error
}

const visualPrefix = "vis_"

// clockPath registers the exact trigger that drives ringing on fire.
type clockPath struct {
	engine *Engine
}

func (c *clockPath) Name() string { return "clock" }

func (c *clockPath) Arm(_ context.Context, p Payload) error {
	return c.engine.Schedule(Trigger{ID: p.ID, Title: p.Title, TriggerAt: p.TriggerAt})
}

func (c *clockPath) Cancel(_ context.Context, id string) error {
	c.engine.Cancel(id)
	return nil
}

// visualPath registers a second, silent trigger for the same moment as a
// fallback surface in case the clock path is lost.
type visualPath struct {
	engine *Engine
}

func (v *visualPath) Name() string { return "visual" }

func (v *visualPath) Arm(_ context.Context, p Payload) error {
	return v.engine.Schedule(Trigger{
		ID:        visualPrefix + p.ID,
		Title:     p.Title,
		TriggerAt: p.TriggerAt,
	})
}

func (v *visualPath) Cancel(_ context.Context, id string) error {
	v.engine.Cancel(visualPrefix + id)
	return nil
}

// ringerPath records the intent to ring when the clock trigger fires.
// Arming is idempotent per id.
type ringerPath struct {
	mu    sync.Mutex
	armed map[string]string // id -> title
}

func newRingerPath() *ringerPath {
	return &ringerPath{armed: make(map[string]string)}
}

func (r *ringerPath) Name() string { return "ringer" }

func (r *ringerPath) Arm(_ context.Context, p Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed[p.ID] = p.Title
	return nil
}

func (r *ringerPath) Cancel(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.armed, id)
	return nil
}

func (r *ringerPath) shouldRing(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.armed[id]
	return ok
}
