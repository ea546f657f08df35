package checkout

type State string

const (
	StateIdle            State = "Idle"
	StateIntentRequested State = "IntentRequested"
	StateWidgetLaunched  State = "WidgetLaunched"
	StateAwaitingResult  State = "AwaitingResult"
	StateVerifying       State = "Verifying"
	StateSucceeded       State = "Succeeded"
	StateFailed          State = "Failed"
)

var transitions = map[State][]State{
	StateIdle:            {StateIntentRequested},
	StateIntentRequested: {StateWidgetLaunched, StateFailed},
	StateWidgetLaunched:  {StateAwaitingResult, StateFailed},
	StateAwaitingResult:  {StateVerifying, StateFailed},
	StateVerifying:       {StateSucceeded, StateFailed},
	StateSucceeded:       {StateIntentRequested},
	StateFailed:          {StateIntentRequested},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports the end of an attempt. A terminal state accepts a new attempt, just like Idle.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

func (s State) InFlight() bool {
	return s != StateIdle && !s.IsTerminal()
}
