package planner

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// OccurrenceOn resolves the trigger time of a slot on the given day. For a
// plain slot this is StartAt when it falls on that day. For a recurring slot
// the RRULE is expanded with StartAt as DTSTART and the occurrence inside
// [day 00:00, day+1 00:00) is returned, keeping StartAt's clock time.
func (s TimeSlot) OccurrenceOn(day time.Time) (time.Time, bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	if !s.IsRecurring() {
		if s.StartAt.Before(dayStart) || !s.StartAt.Before(dayEnd) {
			return time.Time{}, false, nil
		}
		return s.StartAt, true, nil
	}

	opts, err := rrule.StrToROption(s.Recurrence)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("planner - OccurrenceOn - rrule.StrToROption: %w", err)
	}
	opts.Dtstart = s.StartAt

	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("planner - OccurrenceOn - rrule.NewRRule: %w", err)
	}

	occ := rule.Between(dayStart, dayEnd, true)
	for _, t := range occ {
		if !t.Before(dayStart) && t.Before(dayEnd) {
			return t, true, nil
		}
	}
	return time.Time{}, false, nil
}
