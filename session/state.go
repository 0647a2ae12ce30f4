// Package session drives one configure/start/tick/stop lifecycle of the
// publishing pipeline.
// file: session/state.go
package session

// State is the lifecycle state of a Session.
type State int32

const (
	// PreOperational means Configure has not succeeded yet.
	PreOperational State = iota
	// Stopped means configured and ready to start.
	Stopped
	// Running means started, waiting for the first input or the first timeout.
	Running
	// Publishing means new input arrived within the timeout.
	Publishing
	// InputTimeout means no new input arrived within the timeout.
	InputTimeout
	// Exception means a fatal error ended the session. Stop or Start recovers.
	Exception
)

func (s State) String() string {
	switch s {
	case PreOperational:
		return "PreOperational"
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Publishing:
		return "Publishing"
	case InputTimeout:
		return "InputTimeout"
	case Exception:
		return "Exception"
	}
	return "Unknown"
}

// Active reports whether the network loop is up in this state.
func (s State) Active() bool {
	return s == Running || s == Publishing || s == InputTimeout
}
