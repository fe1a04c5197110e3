// Package usecase wires the plan repository, the interval scheduler and the
// alarm coordinator behind the operations the HTTP layer exposes.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-71/planme-backend/internal/alarm"
	"github.com/pratik-71/planme-backend/internal/interval"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/pkg/logger"
)

const waterPlanName = "Water Breaks"

type ScheduleService struct {
	repo  planner.Repository
	coord *alarm.Coordinator
	log   *logger.Logger
}

func NewScheduleService(repo planner.Repository, coord *alarm.Coordinator, log *logger.Logger) *ScheduleService {
	return &ScheduleService{repo: repo, coord: coord, log: log}
}

// SaveSchedule persists a day plan and re-arms alarms for every slot still
// in the future. Arming is best-effort: a failed arm is logged, the save
// goes through.
func (s *ScheduleService) SaveSchedule(ctx context.Context, userID string, day planner.DaySchedule) (*planner.DaySchedule, error) {
	for _, slot := range day.Slots {
		if err := slot.Validate(); err != nil {
			return nil, err
		}
	}

	// An update may drop slots; their armed triggers must not outlive the
	// save, or a deleted reminder still rings.
	if day.PlanID != 0 {
		s.cancelRemoved(ctx, userID, day)
	}

	now := time.Now()
	for _, slot := range day.Slots {
		if !slot.StartAt.After(now) {
			continue
		}
		s.coord.Cancel(ctx, slot.ID)
		if err := s.coord.Arm(ctx, alarm.Payload{ID: slot.ID, Title: slot.Title, TriggerAt: slot.StartAt}); err != nil {
			s.log.Warn("save: arm failed", slog.String("slot", slot.ID), logger.Err(err))
		}
	}

	if day.PlanID != 0 {
		return s.repo.UpdateDailyPlan(ctx, day.PlanID, day.Slots)
	}
	return s.repo.AddDailyPlan(ctx, userID, day.PlanName, day.DateISO, day.Slots)
}

// cancelRemoved tears down alarms for slots the prior version of the plan
// had but the incoming batch no longer carries. Best-effort: if the prior
// plan cannot be loaded the save proceeds without the sweep.
func (s *ScheduleService) cancelRemoved(ctx context.Context, userID string, day planner.DaySchedule) {
	plans, err := s.repo.GetAllPlansForDate(ctx, userID, day.DateISO)
	if err != nil {
		s.log.Warn("save: load prior plan failed", slog.Int64("plan", day.PlanID), logger.Err(err))
		return
	}

	keep := make(map[string]struct{}, len(day.Slots))
	for _, slot := range day.Slots {
		keep[slot.ID] = struct{}{}
	}
	for _, plan := range plans {
		if plan.PlanID != day.PlanID {
			continue
		}
		for _, slot := range plan.Slots {
			if _, ok := keep[slot.ID]; !ok {
				s.coord.Cancel(ctx, slot.ID)
			}
		}
	}
}

// RemoveSlot cancels the slot's alarm and rewrites the plan without it.
func (s *ScheduleService) RemoveSlot(ctx context.Context, planID int64, day planner.DaySchedule, slotID string) (*planner.DaySchedule, error) {
	s.coord.Cancel(ctx, slotID)

	kept := make([]planner.TimeSlot, 0, len(day.Slots))
	for _, slot := range day.Slots {
		if slot.ID != slotID {
			kept = append(kept, slot)
		}
	}
	return s.repo.UpdateDailyPlan(ctx, planID, kept)
}

// PreviewWater runs the interval scheduler without persisting or arming.
func (s *ScheduleService) PreviewWater(req interval.Request) ([]planner.ReminderSlot, error) {
	return interval.Schedule(req)
}

// SaveWaterPlan computes the water reminder batch, replaces all previously
// armed water reminders with it, and stores the batch as a day plan.
func (s *ScheduleService) SaveWaterPlan(ctx context.Context, userID string, req interval.Request) ([]planner.ReminderSlot, *planner.DaySchedule, error) {
	slots, err := interval.Schedule(req)
	if err != nil {
		return nil, nil, err
	}

	s.coord.CancelAllWater()
	for _, slot := range slots {
		if err := s.coord.ArmWater(ctx, slot); err != nil {
			s.log.Warn("water: arm failed", slog.String("slot", slot.ID), logger.Err(err))
		}
	}

	planSlots := make([]planner.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		planSlots = append(planSlots, planner.TimeSlot{
			ID:       slot.ID,
			Title:    slot.Title,
			StartAt:  slot.TriggerAt,
			Category: planner.CategoryWater,
		})
	}

	plan, err := s.upsertWaterPlan(ctx, userID, req.Now.Format("2006-01-02"), planSlots)
	if err != nil {
		return nil, nil, err
	}
	return slots, plan, nil
}

// upsertWaterPlan rewrites the date's existing water plan when one exists,
// otherwise creates it. One water plan per user per day; a re-save replaces
// the stored batch instead of stacking a second plan next to it.
func (s *ScheduleService) upsertWaterPlan(ctx context.Context, userID, dateISO string, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	plans, err := s.repo.GetAllPlansForDate(ctx, userID, dateISO)
	if err != nil {
		return nil, fmt.Errorf("usecase - upsertWaterPlan - repo.GetAllPlansForDate: %w", err)
	}
	for _, plan := range plans {
		if plan.PlanName == waterPlanName {
			updated, err := s.repo.UpdateDailyPlan(ctx, plan.PlanID, slots)
			if err != nil {
				return nil, fmt.Errorf("usecase - upsertWaterPlan - repo.UpdateDailyPlan: %w", err)
			}
			return updated, nil
		}
	}

	plan, err := s.repo.AddDailyPlan(ctx, userID, waterPlanName, dateISO, slots)
	if err != nil {
		return nil, fmt.Errorf("usecase - upsertWaterPlan - repo.AddDailyPlan: %w", err)
	}
	return plan, nil
}

// ApplyTemplate expands a template into a new day plan on the given date
// and arms the future slots.
func (s *ScheduleService) ApplyTemplate(ctx context.Context, userID string, tpl planner.Template, dateISO string) (*planner.DaySchedule, error) {
	day, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return nil, fmt.Errorf("usecase - ApplyTemplate - time.Parse: %w", err)
	}

	slots := make([]planner.TimeSlot, 0, len(tpl.Reminders))
	for _, rem := range tpl.Reminders {
		clock, err := time.Parse("15:04", rem.Time)
		if err != nil {
			return nil, fmt.Errorf("usecase - ApplyTemplate - time.Parse(%q): %w", rem.Time, err)
		}
		slots = append(slots, planner.TimeSlot{
			ID:      uuid.NewString(),
			Title:   rem.Title,
			StartAt: time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local),
		})
	}

	return s.SaveSchedule(ctx, userID, planner.DaySchedule{
		DateISO:  dateISO,
		DayName:  planner.DayName(dateISO),
		Slots:    slots,
		PlanName: tpl.Name,
	})
}
