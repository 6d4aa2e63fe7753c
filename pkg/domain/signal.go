package domain

import (
	"fmt"
	"strings"
)

// Signal is a lifecycle notification delivered by the host driver.
type Signal string

const (
	SignalCreate  Signal = "create"
	SignalStart   Signal = "start"
	SignalResume  Signal = "resume"
	SignalPause   Signal = "pause"
	SignalStop    Signal = "stop"
	SignalDestroy Signal = "destroy"
	// SignalBack is a back-navigation request, not a stage transition.
	SignalBack Signal = "back"
)

// Signals lists every known signal in nominal order.
func Signals() []Signal {
	return []Signal{SignalCreate, SignalStart, SignalResume, SignalPause, SignalStop, SignalDestroy, SignalBack}
}

// ParseSignal validates a signal name (case-insensitive, optional "on_" prefix).
func ParseSignal(name string) (Signal, error) {
	n := Signal(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "on_"))
	for _, s := range Signals() {
		if s == n {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}
