package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/internal/usecase"
)

func (h *Handler) checkUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, isNew, err := h.repo.CheckUser(r.Context(), req.UserID, req.Email, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"user": user, "isNew": isNew})
}

func (h *Handler) updateProteinGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProteinGoal int `json:"protein_goal"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.repo.UpdateProteinGoal(r.Context(), chi.URLParam(r, "userID"), req.ProteinGoal)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"user": user})
}

func (h *Handler) addPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string             `json:"userId"`
		PlanName  string             `json:"planName"`
		PlanDate  string             `json:"planDate"`
		Reminders []planner.TimeSlot `json:"reminders"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.svc.SaveSchedule(r.Context(), req.UserID, planner.DaySchedule{
		DateISO:  req.PlanDate,
		DayName:  planner.DayName(req.PlanDate),
		Slots:    req.Reminders,
		PlanName: req.PlanName,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"plan": plan})
}

func (h *Handler) updatePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID    int64              `json:"planId"`
		Reminders []planner.TimeSlot `json:"reminders"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.svc.SaveSchedule(r.Context(), "", planner.DaySchedule{
		PlanID: req.PlanID,
		Slots:  req.Reminders,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"plan": plan})
}

func (h *Handler) getAllPlansForDate(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	date := r.URL.Query().Get("date")

	plans, err := h.repo.GetAllPlansForDate(r.Context(), userID, date)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"plans": plans})
}

func (h *Handler) getUserDailyPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repo.GetUserDailyPlans(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": plans})
}

func (h *Handler) exportDayICS(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	date := chi.URLParam(r, "date")

	plans, err := h.repo.GetAllPlansForDate(r.Context(), userID, date)
	if err != nil {
		h.fail(w, err)
		return
	}

	merged := planner.DaySchedule{DateISO: date, DayName: planner.DayName(date)}
	for _, plan := range plans {
		merged.Slots = append(merged.Slots, plan.Slots...)
	}

	data, err := usecase.ExportICS(merged)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=plan-"+date+".ics")
	_, _ = w.Write(data)
}

// removeSlot drops one slot from a plan and cancels its alarm. The caller
// names the plan's owner and date so the current slot set can be loaded.
func (h *Handler) removeSlot(w http.ResponseWriter, r *http.Request) {
	planID, err := parseID(r, "planID")
	if err != nil {
		h.badRequest(w, err)
		return
	}
	slotID := chi.URLParam(r, "slotID")

	userID := r.URL.Query().Get("userId")
	date := r.URL.Query().Get("date")

	plans, err := h.repo.GetAllPlansForDate(r.Context(), userID, date)
	if err != nil {
		h.fail(w, err)
		return
	}
	for _, plan := range plans {
		if plan.PlanID != planID {
			continue
		}
		updated, err := h.svc.RemoveSlot(r.Context(), planID, plan, slotID)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.ok(w, map[string]any{"plan": updated})
		return
	}
	h.fail(w, planner.ErrNotFound)
}

func (h *Handler) listAlarms(w http.ResponseWriter, r *http.Request) {
	h.ok(w, map[string]any{"armed": h.coord.ArmedIDs()})
}

func (h *Handler) dismissAlarm(w http.ResponseWriter, r *http.Request) {
	h.coord.Dismiss(chi.URLParam(r, "alarmID"))
	h.ok(w, nil)
}

func parseID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
