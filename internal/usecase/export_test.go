package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-71/planme-backend/internal/planner"
)

func TestExportICS(t *testing.T) {
	plan := planner.DaySchedule{
		DateISO: "2025-03-10",
		DayName: "Monday",
		Slots: []planner.TimeSlot{
			{
				ID:      "slot-1",
				Title:   "Morning run",
				StartAt: time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC),
			},
			{
				ID:         "slot-2",
				Title:      "Vitamins",
				StartAt:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
				Category:   "health",
				Recurrence: "FREQ=DAILY",
			},
		},
	}

	out, err := ExportICS(plan)
	require.NoError(t, err)

	ics := string(out)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.Contains(t, ics, "UID:slot-1")
	assert.Contains(t, ics, "SUMMARY:Morning run")
	assert.Contains(t, ics, "UID:slot-2")
	assert.Contains(t, ics, "CATEGORIES:health")
	assert.Contains(t, ics, "RRULE:FREQ=DAILY")
	assert.Contains(t, ics, "DTSTART:20250310T070000Z")
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "ACTION:DISPLAY")
	assert.Contains(t, ics, "TRIGGER:PT0S")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestExportICS_EmptyPlan(t *testing.T) {
	out, err := ExportICS(planner.DaySchedule{DateISO: "2025-03-10"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(out), "BEGIN:VEVENT")
}
