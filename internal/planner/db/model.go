package db

import (
	"encoding/json"
	"time"

	"github.com/pratik-71/planme-backend/internal/planner"
)

type planRow struct {
	ID        int64
	UserID    string
	PlanName  string
	PlanDate  time.Time
	Reminders []byte
}

func (p planRow) ToDomain() (planner.DaySchedule, error) {
	var slots []planner.TimeSlot
	if len(p.Reminders) > 0 {
		if err := json.Unmarshal(p.Reminders, &slots); err != nil {
			return planner.DaySchedule{}, err
		}
	}
	dateISO := p.PlanDate.Format("2006-01-02")
	return planner.DaySchedule{
		DateISO:  dateISO,
		DayName:  planner.DayName(dateISO),
		Slots:    slots,
		PlanID:   p.ID,
		PlanName: p.PlanName,
	}, nil
}

type templateRow struct {
	ID        int64
	UserID    string
	Name      string
	Reminders []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t templateRow) ToDomain() (planner.Template, error) {
	var reminders []planner.TemplateReminder
	if len(t.Reminders) > 0 {
		if err := json.Unmarshal(t.Reminders, &reminders); err != nil {
			return planner.Template{}, err
		}
	}
	return planner.Template{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		Reminders: reminders,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

type miscRow struct {
	Date      time.Time
	Protein   int
	Water     int
	UpdatedAt time.Time
}

func (m miscRow) ToDomain() planner.DailyMisc {
	return planner.DailyMisc{
		DateISO:   m.Date.Format("2006-01-02"),
		ProteinG:  m.Protein,
		WaterMl:   m.Water,
		UpdatedAt: m.UpdatedAt,
	}
}
