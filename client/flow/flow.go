package flow

// SpinState is the lifecycle state of the spin orchestrator.
// Idle is the only state in which a new spin may start.
type SpinState int

const (
	SpinStateIdle SpinState = iota
	// SpinStateLocked is held between trigger acceptance and the request going out.
	SpinStateLocked
	SpinStateSpinning
	SpinStateStopping
	SpinStateSettling
	SpinStateAborting
)

func (s SpinState) String() string {
	switch s {
	case SpinStateIdle:
		return "Idle"
	case SpinStateLocked:
		return "Locked"
	case SpinStateSpinning:
		return "Spinning"
	case SpinStateStopping:
		return "Stopping"
	case SpinStateSettling:
		return "Settling"
	case SpinStateAborting:
		return "Aborting"
	}
	return "Unknown"
}

// Busy reports whether a spin is in flight.
func (s SpinState) Busy() bool {
	return s != SpinStateIdle
}
