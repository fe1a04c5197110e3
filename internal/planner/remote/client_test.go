package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/pkg/logger"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.New("error", "dev"))
}

func TestClient_CheckUser(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/user/check", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    planner.User{UserID: "u1", Email: "u@x.io", Name: "U"},
			"isNew":   true,
		})
	})

	user, isNew, err := c.CheckUser(context.Background(), "u1", "u@x.io", "U")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "u1", user.UserID)

	// The reschedule pass sees the user we just checked.
	ids, err := c.ListUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestClient_GetAllPlansForDate(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getAllPlansForDate", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("date"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"plans": []map[string]any{{
				"id":        7,
				"plan_name": "Workday",
				"reminders": []planner.TimeSlot{{ID: "s1", Title: "Gym", StartAt: start}},
			}},
		})
	})

	plans, err := c.GetAllPlansForDate(context.Background(), "u1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(7), plans[0].PlanID)
	assert.Equal(t, "Monday", plans[0].DayName)
	require.Len(t, plans[0].Slots, 1)
	assert.Equal(t, "Gym", plans[0].Slots[0].Title)
	assert.True(t, plans[0].Slots[0].StartAt.Equal(start))
}

func TestClient_DoublyEncodedReminders(t *testing.T) {
	inner, err := json.Marshal([]planner.TimeSlot{{ID: "s1", Title: "Gym", StartAt: time.Now()}})
	require.NoError(t, err)

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"plans": []map[string]any{{
				"id":        1,
				"plan_name": "Legacy",
				"reminders": string(inner), // JSON array stored as a string
			}},
		})
	})

	plans, err := c.GetAllPlansForDate(context.Background(), "u1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Slots, 1)
	assert.Equal(t, "s1", plans[0].Slots[0].ID)
}

func TestClient_ErrorStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetUserTemplates(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClient_AddDailyPlan(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/addPlan", r.URL.Path)

		var body struct {
			UserID    string             `json:"userId"`
			PlanName  string             `json:"planName"`
			PlanDate  string             `json:"planDate"`
			Reminders []planner.TimeSlot `json:"reminders"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Workday", body.PlanName)

		reminders, _ := json.Marshal(body.Reminders)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"plan": map[string]any{
				"id":        42,
				"plan_name": body.PlanName,
				"reminders": json.RawMessage(reminders),
			},
		})
	})

	plan, err := c.AddDailyPlan(context.Background(), "u1", "Workday", "2025-03-10", []planner.TimeSlot{
		{ID: "s1", Title: "Gym", StartAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), plan.PlanID)
	assert.Equal(t, "2025-03-10", plan.DateISO)
	require.Len(t, plan.Slots, 1)
}
