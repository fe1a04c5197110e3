// Package interval distributes water-break reminders evenly across the
// allowed portion of a day, skipping meal buffers and custom exclusions.
package interval

import (
	"errors"
	"fmt"
	"time"

	"github.com/pratik-71/planme-backend/internal/planner"
)

var (
	// ErrNoTimeWindow is returned when the exclusions consume the whole
	// wake-sleep range, or the range is already in the past.
	ErrNoTimeWindow = errors.New("interval: no available time window")
	ErrInvalidGoal  = errors.New("interval: goal must be positive")
	ErrInvalidDose  = errors.New("interval: dose must be 250 or 500 ml")
)

const (
	// Meal exclusions span [meal-30m, meal+60m].
	mealBefore = 30 * time.Minute
	mealAfter  = 60 * time.Minute

	// The first slot never lands closer than this to "now".
	startBuffer = 2 * time.Minute

	// Slots bias into segment interiors instead of landing exactly on an
	// exclusion edge.
	edgeClamp = time.Millisecond
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Request carries one scheduling run. Wake, Sleep and Meals are absolute
// times on the scheduling day; an overnight Sleep at or before Wake is
// rolled to the next calendar day.
type Request struct {
	Wake   time.Time
	Sleep  time.Time
	GoalMl int
	DoseMl int
	Meals  []time.Time
	Extra  *Window
	Now    time.Time
}

// RequiredCount is ceil(GoalMl / DoseMl).
func (r Request) RequiredCount() int {
	return (r.GoalMl + r.DoseMl - 1) / r.DoseMl
}

// Schedule computes the reminder slots for the request. Every returned
// trigger time lies inside [max(wake, now+2m), sleep] and outside every
// exclusion window; the count equals RequiredCount and times are strictly
// increasing.
func Schedule(req Request) ([]planner.ReminderSlot, error) {
	if req.GoalMl <= 0 {
		return nil, ErrInvalidGoal
	}
	if req.DoseMl != 250 && req.DoseMl != 500 {
		return nil, ErrInvalidDose
	}

	sleep := req.Sleep
	if !sleep.After(req.Wake) {
		sleep = sleep.AddDate(0, 0, 1)
	}

	start := req.Wake
	if n := req.Now.Add(startBuffer); n.After(start) {
		start = n
	}
	if !sleep.After(start) {
		return nil, ErrNoTimeWindow
	}

	main := Window{Start: start, End: sleep}

	var blocks []Window
	for _, meal := range req.Meals {
		if w, ok := clip(Window{Start: meal.Add(-mealBefore), End: meal.Add(mealAfter)}, main); ok {
			blocks = append(blocks, w)
		}
	}
	if req.Extra != nil {
		if w, ok := clip(*req.Extra, main); ok {
			blocks = append(blocks, w)
		}
	}

	allowed := []Window{main}
	for _, blk := range blocks {
		allowed = subtract(allowed, blk)
		if len(allowed) == 0 {
			break
		}
	}
	allowed = merge(allowed)

	var total time.Duration
	for _, seg := range allowed {
		total += seg.Duration()
	}
	if total <= 0 {
		return nil, ErrNoTimeWindow
	}

	required := req.RequiredCount()
	step := total / time.Duration(required)

	slots := make([]planner.ReminderSlot, 0, required)
	run := req.Now.UnixMilli()
	for i := 0; i < required; i++ {
		offset := step*time.Duration(i) + step/2
		t := pickAt(allowed, offset)
		slots = append(slots, planner.ReminderSlot{
			ID:        fmt.Sprintf("%d_%d", run, i),
			Title:     fmt.Sprintf("Drink %dml of water", req.DoseMl),
			TriggerAt: t,
			DoseMl:    req.DoseMl,
		})
	}
	return slots, nil
}

// clip bounds w to main; empty or inverted results are dropped.
func clip(w, main Window) (Window, bool) {
	if w.Start.Before(main.Start) {
		w.Start = main.Start
	}
	if w.End.After(main.End) {
		w.End = main.End
	}
	if !w.End.After(w.Start) {
		return Window{}, false
	}
	return w, true
}

// subtract removes blk from each segment: partial overlap splits a segment
// into up to two pieces, full overlap removes it, no overlap keeps it.
func subtract(segments []Window, blk Window) []Window {
	result := make([]Window, 0, len(segments)+1)
	for _, seg := range segments {
		if !blk.End.After(seg.Start) || !seg.End.After(blk.Start) {
			result = append(result, seg)
			continue
		}
		if blk.Start.After(seg.Start) {
			result = append(result, Window{Start: seg.Start, End: blk.Start})
		}
		if seg.End.After(blk.End) {
			result = append(result, Window{Start: blk.End, End: seg.End})
		}
	}
	return result
}

// merge joins adjacent or overlapping segments, sorted by start.
func merge(segments []Window) []Window {
	if len(segments) == 0 {
		return segments
	}
	sorted := make([]Window, len(segments))
	copy(sorted, segments)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start.Before(sorted[j-1].Start); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := sorted[:1]
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !seg.Start.After(last.End) {
			if seg.End.After(last.End) {
				last.End = seg.End
			}
		} else {
			merged = append(merged, seg)
		}
	}
	return merged
}

// pickAt maps an offset into total allowed time onto the segment list,
// clamping just inside a segment end when rounding would overshoot.
func pickAt(segments []Window, offset time.Duration) time.Time {
	remaining := offset
	for _, seg := range segments {
		if remaining <= seg.Duration() {
			t := seg.Start.Add(remaining)
			if !t.Before(seg.End) {
				t = seg.End.Add(-edgeClamp)
			}
			return t
		}
		remaining -= seg.Duration()
	}
	last := segments[len(segments)-1]
	return last.End.Add(-edgeClamp)
}
