// Package remote implements the plan repository against a remote planme
// backend over JSON/HTTP, the way the mobile client consumed it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/pkg/logger"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger

	mu    sync.Mutex
	known map[string]struct{}
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  log,
		known:   make(map[string]struct{}),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote - do - json.Marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote - do - http.NewRequestWithContext: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote - do - http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote - do: unexpected status %d for %s %s", resp.StatusCode, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote - do - json.Decode: %w", err)
	}
	return nil
}

// remotePlan tolerates reminders arriving either as a JSON array or as a
// doubly-encoded JSON string, both of which the backend has produced.
type remotePlan struct {
	ID        int64           `json:"id"`
	PlanName  string          `json:"plan_name"`
	Reminders json.RawMessage `json:"reminders"`
}

func (p remotePlan) toDomain(dateISO string) planner.DaySchedule {
	return planner.DaySchedule{
		DateISO:  dateISO,
		DayName:  planner.DayName(dateISO),
		Slots:    decodeSlots(p.Reminders),
		PlanID:   p.ID,
		PlanName: p.PlanName,
	}
}

func decodeSlots(raw json.RawMessage) []planner.TimeSlot {
	if len(raw) == 0 {
		return nil
	}
	var slots []planner.TimeSlot
	if err := json.Unmarshal(raw, &slots); err == nil {
		return slots
	}
	var doubled string
	if err := json.Unmarshal(raw, &doubled); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(doubled), &slots); err != nil {
		return nil
	}
	return slots
}

func (c *Client) remember(userID string) {
	c.mu.Lock()
	c.known[userID] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) CheckUser(ctx context.Context, userID, email, name string) (*planner.User, bool, error) {
	var resp struct {
		Success bool          `json:"success"`
		User    *planner.User `json:"user"`
		IsNew   bool          `json:"isNew"`
	}
	err := c.do(ctx, http.MethodPost, "/user/check", map[string]string{
		"user_id": userID,
		"email":   email,
		"name":    name,
	}, &resp)
	if err != nil {
		return nil, false, err
	}
	if resp.User != nil {
		c.remember(resp.User.UserID)
	}
	return resp.User, resp.IsNew, nil
}

func (c *Client) UpdateProteinGoal(ctx context.Context, userID string, goal int) (*planner.User, error) {
	var resp struct {
		Success bool          `json:"success"`
		User    *planner.User `json:"user"`
	}
	path := "/user/" + url.PathEscape(userID) + "/protein-goal"
	err := c.do(ctx, http.MethodPut, path, map[string]int{"protein_goal": goal}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) AddDailyPlan(ctx context.Context, userID, planName, planDate string, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	var resp struct {
		Success bool       `json:"success"`
		Plan    remotePlan `json:"plan"`
	}
	err := c.do(ctx, http.MethodPost, "/addPlan", map[string]any{
		"userId":    userID,
		"planName":  planName,
		"planDate":  planDate,
		"reminders": slots,
	}, &resp)
	if err != nil {
		return nil, err
	}
	plan := resp.Plan.toDomain(planDate)
	return &plan, nil
}

func (c *Client) UpdateDailyPlan(ctx context.Context, planID int64, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	var resp struct {
		Success bool       `json:"success"`
		Plan    remotePlan `json:"plan"`
		Date    string     `json:"plan_date"`
	}
	err := c.do(ctx, http.MethodPut, "/updatePlan", map[string]any{
		"planId":    planID,
		"reminders": slots,
	}, &resp)
	if err != nil {
		return nil, err
	}
	plan := resp.Plan.toDomain(resp.Date)
	return &plan, nil
}

func (c *Client) GetAllPlansForDate(ctx context.Context, userID, dateISO string) ([]planner.DaySchedule, error) {
	var resp struct {
		Success bool         `json:"success"`
		Plans   []remotePlan `json:"plans"`
	}
	path := "/getAllPlansForDate?userId=" + url.QueryEscape(userID) + "&date=" + url.QueryEscape(dateISO)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	plans := make([]planner.DaySchedule, 0, len(resp.Plans))
	for _, p := range resp.Plans {
		plans = append(plans, p.toDomain(dateISO))
	}
	return plans, nil
}

func (c *Client) GetUserDailyPlans(ctx context.Context, userID string) ([]planner.DaySchedule, error) {
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			remotePlan
			PlanDate string `json:"plan_date"`
		} `json:"data"`
	}
	path := "/daily-plans/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	plans := make([]planner.DaySchedule, 0, len(resp.Data))
	for _, p := range resp.Data {
		plans = append(plans, p.toDomain(p.PlanDate))
	}
	return plans, nil
}

func (c *Client) CreateTemplate(ctx context.Context, userID, name string, reminders []planner.TemplateReminder) (*planner.Template, error) {
	var resp struct {
		Success bool              `json:"success"`
		Data    *planner.Template `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/templates", map[string]any{
		"userId":    userID,
		"name":      name,
		"reminders": reminders,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetUserTemplates(ctx context.Context, userID string) ([]planner.Template, error) {
	var resp struct {
		Success bool               `json:"success"`
		Data    []planner.Template `json:"data"`
	}
	path := "/templates/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, templateID int64, name string, reminders []planner.TemplateReminder) (*planner.Template, error) {
	var resp struct {
		Success bool              `json:"success"`
		Data    *planner.Template `json:"data"`
	}
	path := fmt.Sprintf("/templates/%d", templateID)
	err := c.do(ctx, http.MethodPut, path, map[string]any{
		"name":      name,
		"reminders": reminders,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, templateID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/templates/%d", templateID), nil, nil)
}

func (c *Client) GetBucketList(ctx context.Context, userID string) ([]planner.BucketItem, error) {
	var resp struct {
		Success bool                 `json:"success"`
		Data    []planner.BucketItem `json:"data"`
	}
	path := "/bucket-list/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) AddBucketItem(ctx context.Context, userID, title, description string) ([]planner.BucketItem, error) {
	var resp struct {
		Success bool                 `json:"success"`
		Data    []planner.BucketItem `json:"data"`
	}
	path := "/bucket-list/" + url.PathEscape(userID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"title":       title,
		"description": description,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateBucketList(ctx context.Context, userID string, items []planner.BucketItem) ([]planner.BucketItem, error) {
	var resp struct {
		Success bool                 `json:"success"`
		Data    []planner.BucketItem `json:"data"`
	}
	path := "/bucket-list/" + url.PathEscape(userID)
	err := c.do(ctx, http.MethodPut, path, map[string]any{"bucketList": items}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) ReorderBucketList(ctx context.Context, userID string, ordered []planner.BucketItem) ([]planner.BucketItem, error) {
	var resp struct {
		Success bool                 `json:"success"`
		Data    []planner.BucketItem `json:"data"`
	}
	path := "/bucket-list/" + url.PathEscape(userID) + "/reorder"
	err := c.do(ctx, http.MethodPut, path, map[string]any{"reorderedItems": ordered}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetTodayMisc(ctx context.Context, userID, dateISO string) (*planner.DailyMisc, error) {
	var resp struct {
		Success bool               `json:"success"`
		Data    *planner.DailyMisc `json:"data"`
	}
	path := "/misc/today/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return &planner.DailyMisc{DateISO: dateISO}, nil
	}
	return resp.Data, nil
}

func (c *Client) AddProtein(ctx context.Context, userID, dateISO string, grams int) (*planner.DailyMisc, error) {
	var resp struct {
		Success bool               `json:"success"`
		Data    *planner.DailyMisc `json:"data"`
	}
	path := "/misc/today/" + url.PathEscape(userID) + "/protein"
	err := c.do(ctx, http.MethodPut, path, map[string]int{"protein": grams}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) ProteinHistory(ctx context.Context, userID string, days, offsetDays int) ([]planner.DailyMisc, error) {
	var resp struct {
		Success bool                `json:"success"`
		Data    []planner.DailyMisc `json:"data"`
	}
	path := fmt.Sprintf("/misc/protein-history/%s?days=%d&offsetDays=%d", url.PathEscape(userID), days, offsetDays)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListUserIDs returns the users this process has seen via CheckUser. The
// remote API has no enumeration endpoint; the reschedule pass in remote
// mode covers the locally-known users, matching the original app which
// rescheduled only the authenticated user.
func (c *Client) ListUserIDs(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.known))
	for id := range c.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
