package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pratik-71/planme-backend/internal/planner"
)

func (h *Handler) getBucketList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.GetBucketList(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": items})
}

func (h *Handler) addBucketItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	items, err := h.repo.AddBucketItem(r.Context(), chi.URLParam(r, "userID"), req.Title, req.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": items})
}

func (h *Handler) updateBucketList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []planner.BucketItem `json:"items"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	items, err := h.repo.UpdateBucketList(r.Context(), chi.URLParam(r, "userID"), req.Items)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": items})
}

func (h *Handler) reorderBucketList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []planner.BucketItem `json:"items"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	items, err := h.repo.ReorderBucketList(r.Context(), chi.URLParam(r, "userID"), req.Items)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": items})
}

func (h *Handler) getTodayMisc(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	misc, err := h.repo.GetTodayMisc(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": misc})
}

func (h *Handler) addProtein(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string `json:"date"`
		Grams int    `json:"grams"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	misc, err := h.repo.AddProtein(r.Context(), chi.URLParam(r, "userID"), req.Date, req.Grams)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": misc})
}

func (h *Handler) proteinHistory(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 10)
	offset := queryInt(r, "offsetDays", 0)

	history, err := h.repo.ProteinHistory(r.Context(), chi.URLParam(r, "userID"), days, offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]any{"data": history})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
