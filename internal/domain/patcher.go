package domain

import "time"

// ProcessState is the lifecycle state of the overlay process
type ProcessState int

const (
	StateNotRunning ProcessState = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s ProcessState) String() string {
	switch s {
	case StateNotRunning:
		return "not running"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// EventKind classifies an event forwarded from the overlay process
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
)

// Event is a single message streamed from the overlay process to the UI
type Event struct {
	Kind EventKind
	Text string
	Time time.Time
}
