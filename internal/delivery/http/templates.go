package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pratik-71/planme-backend/internal/planner"
)

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string                     `json:"userId"`
		Name      string                     `json:"name"`
		Reminders []planner.TemplateReminder `json:"reminders"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	tpl, err := h.repo.CreateTemplate(r.Context(), req.UserID, req.Name, req.Reminders)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": tpl})
}

func (h *Handler) getTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.GetUserTemplates(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": templates})
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "templateID")
	if err != nil {
		h.badRequest(w, err)
		return
	}

	var req struct {
		Name      string                     `json:"name"`
		Reminders []planner.TemplateReminder `json:"reminders"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	tpl, err := h.repo.UpdateTemplate(r.Context(), id, req.Name, req.Reminders)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": tpl})
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "templateID")
	if err != nil {
		h.badRequest(w, err)
		return
	}

	if err := h.repo.DeleteTemplate(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}

// applyTemplate instantiates a template as a day plan and arms its alarms.
func (h *Handler) applyTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "templateID")
	if err != nil {
		h.badRequest(w, err)
		return
	}

	var req struct {
		UserID string `json:"userId"`
		Date   string `json:"date"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	templates, err := h.repo.GetUserTemplates(r.Context(), req.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	for _, tpl := range templates {
		if tpl.ID != id {
			continue
		}
		plan, err := h.svc.ApplyTemplate(r.Context(), req.UserID, tpl, req.Date)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.ok(w, map[string]any{"plan": plan})
		return
	}
	h.fail(w, planner.ErrNotFound)
}
