package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Transitions(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StatePlanned, StateArmed, true},
		{StatePlanned, StateCancelled, true},
		{StatePlanned, StateFired, false},
		{StateArmed, StateFired, true},
		{StateArmed, StateCancelled, true},
		{StateArmed, StateArmed, true}, // re-arm
		{StateArmed, StateDismissed, false},
		{StateFired, StateDismissed, true},
		{StateFired, StateCancelled, false},
		{StateDismissed, StateArmed, false},
		{StateCancelled, StateArmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "planned", StatePlanned.String())
	assert.Equal(t, "armed", StateArmed.String())
	assert.Equal(t, "fired", StateFired.String())
	assert.Equal(t, "dismissed", StateDismissed.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(42).String())
}
