package alarm

// State tracks one reminder through its lifecycle.
type State int8

const (
	StatePlanned State = iota
	StateArmed
	StateFired
	StateDismissed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateArmed:
		return "armed"
	case StateFired:
		return "fired"
	case StateDismissed:
		return "dismissed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CanTransition reports whether the move is legal. Dismissed is the only
// user-reachable terminal state from Fired; Cancelled is reachable before
// the trigger fires.
func (s State) CanTransition(to State) bool {
	switch s {
	case StatePlanned:
		return to == StateArmed || to == StateCancelled
	case StateArmed:
		return to == StateFired || to == StateCancelled || to == StateArmed
	case StateFired:
		return to == StateDismissed
	default:
		return false
	}
}
