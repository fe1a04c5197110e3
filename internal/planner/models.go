package planner

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("planner: not found")
	ErrInvalidSlot = errors.New("planner: invalid slot")
)

// Subgoal is one checklist item inside a time slot.
type Subgoal struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority,omitempty"`
}

// TimeSlot is one scheduled reminder inside a day plan. StartAt is absolute;
// Recurrence optionally carries an RFC 5545 RRULE for repeating slots.
type TimeSlot struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartAt    time.Time `json:"startISO"`
	Subgoals   []Subgoal `json:"subgoals"`
	AlarmID    string    `json:"alarmId,omitempty"`
	Priority   string    `json:"priority,omitempty"`
	Category   string    `json:"category,omitempty"`
	Recurrence string    `json:"recurrence,omitempty"`
}

// CategoryWater marks slots generated by the water scheduler; the alarm
// layer keeps them on the silent surface.
const CategoryWater = "water"

func (s TimeSlot) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSlot
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrInvalidSlot
	}
	if s.StartAt.IsZero() {
		return ErrInvalidSlot
	}
	return nil
}

// IsRecurring reports whether the slot repeats via an RRULE.
func (s TimeSlot) IsRecurring() bool {
	return s.Recurrence != ""
}

// DaySchedule is the set of slots for one calendar date, owned by one user.
type DaySchedule struct {
	DateISO  string     `json:"dateISO"` // yyyy-MM-dd
	DayName  string     `json:"dayName"` // Monday, etc.
	Slots    []TimeSlot `json:"slots"`
	PlanID   int64      `json:"planId,omitempty"`
	PlanName string     `json:"planName,omitempty"`
}

// ReminderSlot is one armed water reminder produced in bulk by the interval
// scheduler.
type ReminderSlot struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TriggerAt time.Time `json:"triggerAt"`
	DoseMl    int       `json:"doseMl"`
}

// User mirrors the backend user row.
type User struct {
	ID          int64  `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Streak      int    `json:"streak,omitempty"`
	ProteinGoal int    `json:"protein_goal,omitempty"`
}

// TemplateReminder is one entry of a reusable plan template.
type TemplateReminder struct {
	Title string `json:"title"`
	Time  string `json:"time"` // HH:MM
}

// Template is a named, reusable set of reminders.
type Template struct {
	ID        int64              `json:"id,omitempty"`
	UserID    string             `json:"user_id"`
	Name      string             `json:"name"`
	Reminders []TemplateReminder `json:"reminders"`
	CreatedAt time.Time          `json:"created_at,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty"`
}

// BucketItem is one bucket-list entry; Position orders the list.
type BucketItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	Position    int    `json:"position"`
}

// DailyMisc is the per-day nutrition rollup.
type DailyMisc struct {
	DateISO   string `json:"date"`
	ProteinG  int    `json:"protein"`
	WaterMl   int    `json:"water"`
	UpdatedAt time.Time
}

// DayName returns the English weekday name for a yyyy-MM-dd date.
func DayName(dateISO string) string {
	d, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return ""
	}
	return d.Weekday().String()
}
