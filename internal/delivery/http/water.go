package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pratik-71/planme-backend/internal/interval"
)

// waterRequest mirrors the schedule-breaks form: clock times as HH:MM on
// the scheduling day, liters converted to ml by the caller.
type waterRequest struct {
	UserID    string `json:"userId"`
	Wake      string `json:"wake"`
	Sleep     string `json:"sleep"`
	GoalMl    int    `json:"goalMl"`
	DoseMl    int    `json:"doseMl"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	ExtraFrom string `json:"extraFrom,omitempty"`
	ExtraTo   string `json:"extraTo,omitempty"`
	UseExtra  bool   `json:"useExtra"`
}

func (req waterRequest) toInterval(now time.Time) (interval.Request, error) {
	out := interval.Request{
		GoalMl: req.GoalMl,
		DoseMl: req.DoseMl,
		Now:    now,
	}

	var err error
	if out.Wake, err = clockOn(now, req.Wake); err != nil {
		return out, err
	}
	if out.Sleep, err = clockOn(now, req.Sleep); err != nil {
		return out, err
	}
	for _, meal := range []string{req.Breakfast, req.Lunch, req.Dinner} {
		t, err := clockOn(now, meal)
		if err != nil {
			return out, err
		}
		out.Meals = append(out.Meals, t)
	}
	if req.UseExtra {
		from, err := clockOn(now, req.ExtraFrom)
		if err != nil {
			return out, err
		}
		to, err := clockOn(now, req.ExtraTo)
		if err != nil {
			return out, err
		}
		out.Extra = &interval.Window{Start: from, End: to}
	}
	return out, nil
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}

func (h *Handler) previewWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !h.decode(w, r, &req) {
		return
	}

	ireq, err := req.toInterval(time.Now())
	if err != nil {
		h.badRequest(w, err)
		return
	}
	slots, err := h.svc.PreviewWater(ireq)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"slots": slots})
}

func (h *Handler) scheduleWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !h.decode(w, r, &req) {
		return
	}

	ireq, err := req.toInterval(time.Now())
	if err != nil {
		h.badRequest(w, err)
		return
	}
	slots, plan, err := h.svc.SaveWaterPlan(r.Context(), req.UserID, ireq)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"slots": slots, "plan": plan})
}
