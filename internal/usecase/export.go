package usecase

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pratik-71/planme-backend/internal/planner"
)

const slotDuration = 30 * time.Minute

// ExportICS renders a day plan as an iCalendar document: one VEVENT per
// slot, each with a display VALARM at the trigger time.
func ExportICS(plan planner.DaySchedule) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//planme//planme-backend//EN")

	for _, slot := range plan.Slots {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, slot.ID)
		event.Props.SetText(ical.PropSummary, slot.Title)
		if slot.Category != "" {
			event.Props.SetText(ical.PropCategories, slot.Category)
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, slot.StartAt.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, slot.StartAt.Add(slotDuration).UTC())
		if slot.Recurrence != "" {
			prop := ical.NewProp(ical.PropRecurrenceRule)
			prop.Value = slot.Recurrence
			event.Props.Set(prop)
		}

		valarm := ical.NewComponent(ical.CompAlarm)
		valarm.Props.SetText(ical.PropAction, "DISPLAY")
		valarm.Props.SetText(ical.PropDescription, slot.Title)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.SetValueType(ical.ValueDuration)
		trigger.Value = "PT0S"
		valarm.Props.Set(trigger)
		event.Children = append(event.Children, valarm)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("usecase - ExportICS - ical.Encode: %w", err)
	}
	return buf.Bytes(), nil
}
