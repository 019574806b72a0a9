package core

// State is the application lifecycle state. Transitions are monotonic:
// NotConfigured -> Configured -> Started -> Stopped.
type State int

const (
	StateNotConfigured State = iota
	StateConfigured
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotConfigured:
		return "not-configured"
	case StateConfigured:
		return "configured"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
