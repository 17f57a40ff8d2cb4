package game

// EventKind tags an Event.
type EventKind int

const (
	EventSessionStarted EventKind = iota
	EventChallengeStarted
	EventStepAccepted
	EventChallengeCompleted
	EventChallengeFailed
	EventPaused
	EventResumed
	EventTicked
	EventSessionEnded
)

func (k EventKind) String() string {
	switch k {
	case EventSessionStarted:
		return "session-started"
	case EventChallengeStarted:
		return "challenge-started"
	case EventStepAccepted:
		return "step-accepted"
	case EventChallengeCompleted:
		return "challenge-completed"
	case EventChallengeFailed:
		return "challenge-failed"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventTicked:
		return "ticked"
	case EventSessionEnded:
		return "session-ended"
	default:
		return "unknown"
	}
}

// Event reports a state transition to the presentation layer.
type Event struct {
	Kind        EventKind
	Department  string
	Step        int
	Timeout     bool
	MetaReached bool
	Outcome     Outcome
}
