package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	require.NoError(t, err)
	return parsed
}

func exclusionsFor(req Request) []Window {
	var out []Window
	for _, meal := range req.Meals {
		out = append(out, Window{Start: meal.Add(-mealBefore), End: meal.Add(mealAfter)})
	}
	if req.Extra != nil {
		out = append(out, *req.Extra)
	}
	return out
}

func TestSchedule_FullDay(t *testing.T) {
	req := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "23:00"),
		GoalMl: 4000,
		DoseMl: 250,
		Meals:  []time.Time{day(t, "08:00"), day(t, "12:00"), day(t, "19:00")},
		Now:    day(t, "06:00"),
	}

	slots, err := Schedule(req)
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for i, slot := range slots {
		assert.False(t, slot.TriggerAt.Before(req.Wake), "slot %d before wake", i)
		assert.True(t, slot.TriggerAt.Before(req.Sleep), "slot %d after sleep", i)
		for _, excl := range exclusionsFor(req) {
			assert.False(t, excl.Contains(slot.TriggerAt),
				"slot %d at %v inside exclusion [%v, %v)", i, slot.TriggerAt, excl.Start, excl.End)
		}
		if i > 0 {
			assert.True(t, slot.TriggerAt.After(slots[i-1].TriggerAt), "slot %d not increasing", i)
		}
	}
}

func TestSchedule_RequiredCount(t *testing.T) {
	for _, tc := range []struct {
		goal, dose, want int
	}{
		{4000, 250, 16},
		{1000, 500, 2},
		{1100, 500, 3},
		{250, 250, 1},
	} {
		req := Request{
			Wake:   day(t, "07:00"),
			Sleep:  day(t, "23:00"),
			GoalMl: tc.goal,
			DoseMl: tc.dose,
			Now:    day(t, "06:00"),
		}
		slots, err := Schedule(req)
		require.NoError(t, err)
		assert.Len(t, slots, tc.want, "goal=%d dose=%d", tc.goal, tc.dose)
	}
}

func TestSchedule_InvalidInput(t *testing.T) {
	base := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "23:00"),
		GoalMl: 2000,
		DoseMl: 250,
		Now:    day(t, "06:00"),
	}

	bad := base
	bad.GoalMl = 0
	_, err := Schedule(bad)
	assert.ErrorIs(t, err, ErrInvalidGoal)

	bad = base
	bad.DoseMl = 300
	_, err = Schedule(bad)
	assert.ErrorIs(t, err, ErrInvalidDose)
}

func TestSchedule_OvernightWindow(t *testing.T) {
	req := Request{
		Wake:   day(t, "22:00"),
		Sleep:  day(t, "06:00"), // rolls to the next day
		GoalMl: 2000,
		DoseMl: 500,
		Now:    day(t, "21:00"),
	}

	slots, err := Schedule(req)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	end := day(t, "06:00").AddDate(0, 0, 1)
	for _, slot := range slots {
		assert.False(t, slot.TriggerAt.Before(req.Wake))
		assert.True(t, slot.TriggerAt.Before(end))
	}
	// Some slot must land past midnight for an 8h overnight window.
	assert.True(t, slots[len(slots)-1].TriggerAt.After(day(t, "23:59")))
}

func TestSchedule_NowInsideWindow(t *testing.T) {
	now := day(t, "14:00")
	req := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "23:00"),
		GoalMl: 1000,
		DoseMl: 250,
		Now:    now,
	}

	slots, err := Schedule(req)
	require.NoError(t, err)
	for i, slot := range slots {
		assert.False(t, slot.TriggerAt.Before(now.Add(2*time.Minute)), "slot %d before now+buffer", i)
	}
}

func TestSchedule_ExclusionsCoverEverything(t *testing.T) {
	req := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "09:00"),
		GoalMl: 500,
		DoseMl: 250,
		Meals:  []time.Time{day(t, "07:30"), day(t, "08:45")},
		Now:    day(t, "06:00"),
	}

	_, err := Schedule(req)
	assert.ErrorIs(t, err, ErrNoTimeWindow)
}

func TestSchedule_WindowAlreadyPast(t *testing.T) {
	req := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "09:00"),
		GoalMl: 500,
		DoseMl: 250,
		Now:    day(t, "10:00"),
	}

	_, err := Schedule(req)
	assert.ErrorIs(t, err, ErrNoTimeWindow)
}

func TestSchedule_ExtraExclusion(t *testing.T) {
	extra := Window{Start: day(t, "13:00"), End: day(t, "17:00")}
	req := Request{
		Wake:   day(t, "07:00"),
		Sleep:  day(t, "23:00"),
		GoalMl: 2000,
		DoseMl: 250,
		Extra:  &extra,
		Now:    day(t, "06:00"),
	}

	slots, err := Schedule(req)
	require.NoError(t, err)
	require.Len(t, slots, 8)
	for i, slot := range slots {
		assert.False(t, extra.Contains(slot.TriggerAt), "slot %d inside extra exclusion", i)
	}
}

func TestSubtract(t *testing.T) {
	seg := Window{Start: day(t, "08:00"), End: day(t, "12:00")}

	// split
	out := subtract([]Window{seg}, Window{Start: day(t, "09:00"), End: day(t, "10:00")})
	require.Len(t, out, 2)
	assert.Equal(t, day(t, "09:00"), out[0].End)
	assert.Equal(t, day(t, "10:00"), out[1].Start)

	// full overlap
	out = subtract([]Window{seg}, Window{Start: day(t, "07:00"), End: day(t, "13:00")})
	assert.Empty(t, out)

	// no overlap
	out = subtract([]Window{seg}, Window{Start: day(t, "13:00"), End: day(t, "14:00")})
	require.Len(t, out, 1)
	assert.Equal(t, seg, out[0])

	// overlap at front
	out = subtract([]Window{seg}, Window{Start: day(t, "07:00"), End: day(t, "09:00")})
	require.Len(t, out, 1)
	assert.Equal(t, day(t, "09:00"), out[0].Start)
}

func TestMerge(t *testing.T) {
	a := Window{Start: day(t, "08:00"), End: day(t, "09:00")}
	b := Window{Start: day(t, "09:00"), End: day(t, "10:00")}
	c := Window{Start: day(t, "11:00"), End: day(t, "12:00")}

	out := merge([]Window{c, b, a})
	require.Len(t, out, 2)
	assert.Equal(t, day(t, "08:00"), out[0].Start)
	assert.Equal(t, day(t, "10:00"), out[0].End)
	assert.Equal(t, c, out[1])
}
