package orchestration

// State of a session's call state machine.
type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
	// StateCompleted and StateFailed are the outcomes a call passes through
	// on its way back to StateIdle.
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// outcome labels calls in metrics, rejected calls never leave StateIdle.
type outcome string

const (
	outcomeCompleted outcome = "completed"
	outcomeFailed    outcome = "failed"
	outcomeRejected  outcome = "rejected"
)
