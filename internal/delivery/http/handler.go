// Package http exposes the planme REST API consumed by the mobile client.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pratik-71/planme-backend/internal/alarm"
	mwlogger "github.com/pratik-71/planme-backend/internal/delivery/http/middleware/logger"
	"github.com/pratik-71/planme-backend/internal/interval"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/internal/usecase"
	"github.com/pratik-71/planme-backend/pkg/logger"
)

type Handler struct {
	log   *logger.Logger
	repo  planner.Repository
	svc   *usecase.ScheduleService
	coord *alarm.Coordinator
}

func NewHandler(log *logger.Logger, repo planner.Repository, svc *usecase.ScheduleService, coord *alarm.Coordinator) *Handler {
	return &Handler{log: log, repo: repo, svc: svc, coord: coord}
}

// Routes mounts the API under /api.
func (h *Handler) Routes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(mwlogger.New(h.log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/check", h.checkUser)
		r.Put("/user/{userID}/protein-goal", h.updateProteinGoal)

		r.Post("/addPlan", h.addPlan)
		r.Put("/updatePlan", h.updatePlan)
		r.Get("/getAllPlansForDate", h.getAllPlansForDate)
		r.Get("/daily-plans/{userID}", h.getUserDailyPlans)
		r.Delete("/plans/{planID}/slots/{slotID}", h.removeSlot)
		r.Get("/plans/{userID}/{date}/export.ics", h.exportDayICS)

		r.Post("/water/preview", h.previewWater)
		r.Post("/water/schedule", h.scheduleWater)

		r.Get("/alarms", h.listAlarms)
		r.Post("/alarms/{alarmID}/dismiss", h.dismissAlarm)

		r.Post("/templates", h.createTemplate)
		r.Get("/templates/{userID}", h.getTemplates)
		r.Put("/templates/{templateID}", h.updateTemplate)
		r.Delete("/templates/{templateID}", h.deleteTemplate)
		r.Post("/templates/{templateID}/apply", h.applyTemplate)

		r.Get("/bucket-list/{userID}", h.getBucketList)
		r.Post("/bucket-list/{userID}", h.addBucketItem)
		r.Put("/bucket-list/{userID}", h.updateBucketList)
		r.Put("/bucket-list/{userID}/reorder", h.reorderBucketList)

		r.Get("/misc/today/{userID}", h.getTodayMisc)
		r.Put("/misc/today/{userID}/protein", h.addProtein)
		r.Get("/misc/protein-history/{userID}", h.proteinHistory)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("write response", logger.Err(err))
	}
}

func (h *Handler) ok(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	h.writeJSON(w, http.StatusOK, body)
}

// fail maps domain errors onto statuses: invalid input is the caller's
// fault, a missing window is unprocessable, everything else is the store.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interval.ErrNoTimeWindow):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, interval.ErrInvalidGoal),
		errors.Is(err, interval.ErrInvalidDose),
		errors.Is(err, planner.ErrInvalidSlot):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrNotFound):
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return false
	}
	return true
}
