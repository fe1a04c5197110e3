package alarm

import (
	"container/heap"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidTriggerTime = errors.New("alarm: invalid trigger time")

// Trigger is one armed timestamp registration.
type Trigger struct {
	ID        string
	Title     string
	TriggerAt time.Time
}

type queueItem struct {
	trigger Trigger
}

type triggerQueue []queueItem

func (pq triggerQueue) Len() int { return len(pq) }

func (pq triggerQueue) Less(i, j int) bool {
	return pq[i].trigger.TriggerAt.Before(pq[j].trigger.TriggerAt)
}

func (pq triggerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *triggerQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *triggerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine keeps armed triggers in a min-heap and emits each one on C when
// its time arrives. Cancelled ids are tombstoned and skipped on pop, so
// re-arming the same id is cancel-then-schedule.
type Engine struct {
	mu        sync.Mutex
	queue     triggerQueue
	cancelled map[string]struct{}
	out       chan Trigger
	wakeup    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopped   bool
	dropped   uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:     make(triggerQueue, 0),
		cancelled: make(map[string]struct{}),
		out:       make(chan Trigger, bufferSize),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Trigger {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(t Trigger) error {
	if t.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("alarm: engine stopped")
	}

	// Re-arming replaces: drop any pending entry with the same id so a
	// cancel-then-schedule cycle never leaves a duplicate trigger behind.
	delete(e.cancelled, t.ID)
	for i := 0; i < len(e.queue); {
		if e.queue[i].trigger.ID == t.ID {
			heap.Remove(&e.queue, i)
			continue
		}
		i++
	}
	heap.Push(&e.queue, queueItem{trigger: t})
	e.signalWakeup()
	return nil
}

// Cancel tombstones a trigger id; a pending trigger with that id never fires.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled[id] = struct{}{}
	e.signalWakeup()
}

// CancelPrefix tombstones every pending trigger whose id has the prefix.
func (e *Engine) CancelPrefix(prefix string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, item := range e.queue {
		if strings.HasPrefix(item.trigger.ID, prefix) {
			e.cancelled[item.trigger.ID] = struct{}{}
		}
	}
	e.signalWakeup()
}

// Pending returns the ids of armed, not-cancelled triggers.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.queue))
	for _, item := range e.queue {
		if _, dead := e.cancelled[item.trigger.ID]; !dead {
			ids = append(ids, item.trigger.ID)
		}
	}
	return ids
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, t := range due {
				select {
				case e.out <- t:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Trigger, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		next := e.queue[0].trigger
		if _, dead := e.cancelled[next.ID]; dead {
			heap.Pop(&e.queue)
			delete(e.cancelled, next.ID)
			continue
		}
		return next, true
	}
	return Trigger{}, false
}

func (e *Engine) popDue(now time.Time) []Trigger {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trigger, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].trigger
		if _, dead := e.cancelled[next.ID]; dead {
			heap.Pop(&e.queue)
			delete(e.cancelled, next.ID)
			continue
		}
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.trigger)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
