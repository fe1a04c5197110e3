package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-71/planme-backend/internal/alarm"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/internal/usecase"
	"github.com/pratik-71/planme-backend/pkg/logger"
)

// stubRepo answers the handlers with canned data.
type stubRepo struct {
	planner.Repository

	user    *planner.User
	plans   []planner.DaySchedule
	bucket  []planner.BucketItem
	history []planner.DailyMisc
}

func (s *stubRepo) CheckUser(ctx context.Context, userID, email, name string) (*planner.User, bool, error) {
	return s.user, false, nil
}

func (s *stubRepo) GetAllPlansForDate(ctx context.Context, userID, dateISO string) ([]planner.DaySchedule, error) {
	return s.plans, nil
}

func (s *stubRepo) AddDailyPlan(ctx context.Context, userID, planName, planDate string, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	return &planner.DaySchedule{
		DateISO:  planDate,
		PlanID:   1,
		PlanName: planName,
		Slots:    slots,
	}, nil
}

func (s *stubRepo) UpdateDailyPlan(ctx context.Context, planID int64, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	return &planner.DaySchedule{PlanID: planID, Slots: slots}, nil
}

func (s *stubRepo) GetBucketList(ctx context.Context, userID string) ([]planner.BucketItem, error) {
	return s.bucket, nil
}

func (s *stubRepo) ProteinHistory(ctx context.Context, userID string, days, offsetDays int) ([]planner.DailyMisc, error) {
	s.history = append(s.history, planner.DailyMisc{ProteinG: days, WaterMl: offsetDays})
	return nil, nil
}

func (s *stubRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func testServer(t *testing.T, repo planner.Repository) *httptest.Server {
	t.Helper()
	l := logger.New("error", "dev")
	coord := alarm.NewCoordinator(l, repo, alarm.NewLogNotifier(l), alarm.Config{
		RescheduleDelay: time.Millisecond,
		MinLead:         5 * time.Second,
		RingTimeout:     time.Second,
	})
	coord.Init()
	t.Cleanup(coord.Dispose)

	svc := usecase.NewScheduleService(repo, coord, l)
	r := chi.NewRouter()
	NewHandler(l, repo, svc, coord).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCheckUserEndpoint(t *testing.T) {
	srv := testServer(t, &stubRepo{user: &planner.User{UserID: "u1", Name: "U"}})

	resp := postJSON(t, srv.URL+"/api/user/check", map[string]string{
		"user_id": "u1", "email": "u@x.io", "name": "U",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["user_id"])
}

func TestWaterPreviewEndpoint(t *testing.T) {
	srv := testServer(t, &stubRepo{})

	// Relative clock times keep the window ahead of the wall clock; when
	// sleep wraps past midnight the scheduler rolls it to the next day.
	now := time.Now()
	clock := func(d time.Duration) string { return now.Add(d).Format("15:04") }

	resp := postJSON(t, srv.URL+"/api/water/preview", map[string]any{
		"wake": clock(0), "sleep": clock(6 * time.Hour),
		"goalMl": 1000, "doseMl": 500,
		"breakfast": clock(time.Hour), "lunch": clock(2 * time.Hour), "dinner": clock(3 * time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	slots := body["slots"].([]any)
	assert.Len(t, slots, 2)
}

func TestWaterPreviewEndpoint_BadTime(t *testing.T) {
	srv := testServer(t, &stubRepo{})

	resp := postJSON(t, srv.URL+"/api/water/preview", map[string]any{
		"wake": "late", "sleep": "23:00",
		"goalMl": 1000, "doseMl": 500,
		"breakfast": "08:00", "lunch": "12:00", "dinner": "19:00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestWaterScheduleEndpoint_NoWindow(t *testing.T) {
	srv := testServer(t, &stubRepo{})

	// the meal buffer [06:55, 08:25) swallows the whole wake-sleep hour
	resp := postJSON(t, srv.URL+"/api/water/schedule", map[string]any{
		"userId": "u1",
		"wake":   "07:00", "sleep": "08:00",
		"goalMl": 500, "doseMl": 250,
		"breakfast": "07:25", "lunch": "07:25", "dinner": "07:25",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestAddPlanEndpoint_InvalidSlot(t *testing.T) {
	srv := testServer(t, &stubRepo{})

	resp := postJSON(t, srv.URL+"/api/addPlan", map[string]any{
		"userId":   "u1",
		"planName": "Workday",
		"planDate": "2025-03-10",
		"reminders": []map[string]any{
			{"id": "", "title": "no id", "startISO": time.Now()},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBucketListEndpoint(t *testing.T) {
	srv := testServer(t, &stubRepo{bucket: []planner.BucketItem{
		{ID: "b1", Title: "Skydive", Position: 0},
	}})

	resp, err := http.Get(srv.URL + "/api/bucket-list/u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Skydive", items[0].(map[string]any)["title"])
}

func TestProteinHistoryEndpoint_Defaults(t *testing.T) {
	repo := &stubRepo{}
	srv := testServer(t, repo)

	resp, err := http.Get(srv.URL + "/api/misc/protein-history/u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.Len(t, repo.history, 1)
	assert.Equal(t, 10, repo.history[0].ProteinG) // days default
	assert.Equal(t, 0, repo.history[0].WaterMl)   // offset default
}

func TestExportEndpoint(t *testing.T) {
	srv := testServer(t, &stubRepo{plans: []planner.DaySchedule{{
		DateISO: "2025-03-10",
		Slots: []planner.TimeSlot{
			{ID: "s1", Title: "Gym", StartAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		},
	}}})

	resp, err := http.Get(srv.URL + "/api/plans/u1/2025-03-10/export.ics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
}

func TestRemoveSlotEndpoint(t *testing.T) {
	srv := testServer(t, &stubRepo{plans: []planner.DaySchedule{{
		DateISO: "2025-03-10",
		PlanID:  7,
		Slots: []planner.TimeSlot{
			{ID: "s1", Title: "Gym", StartAt: time.Now().Add(time.Hour)},
			{ID: "s2", Title: "Read", StartAt: time.Now().Add(2 * time.Hour)},
		},
	}}})

	req, err := http.NewRequest(http.MethodDelete,
		srv.URL+"/api/plans/7/slots/s1?userId=u1&date=2025-03-10", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	plan := body["plan"].(map[string]any)
	slots := plan["slots"].([]any)
	require.Len(t, slots, 1)
	assert.Equal(t, "s2", slots[0].(map[string]any)["id"])

	// unknown plan id
	req, err = http.NewRequest(http.MethodDelete,
		srv.URL+"/api/plans/99/slots/s1?userId=u1&date=2025-03-10", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAlarmEndpoints(t *testing.T) {
	srv := testServer(t, &stubRepo{})

	resp, err := http.Get(srv.URL + "/api/alarms")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	resp = postJSON(t, srv.URL+"/api/alarms/some-id/dismiss", map[string]any{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
