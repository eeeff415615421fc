package runtime

// ActualState is the last-observed lifecycle condition of a node as
// reported by the studio server.
type ActualState string

const (
	ActualUndeployed ActualState = "undeployed"
	ActualPending    ActualState = "pending"
	ActualStarting   ActualState = "starting"
	ActualRunning    ActualState = "running"
	ActualStopped    ActualState = "stopped"
	ActualStopping   ActualState = "stopping"
	ActualError      ActualState = "error"
	ActualExited     ActualState = "exited"
)

// DesiredState is the operator intent for a node.
type DesiredState string

const (
	DesiredStopped DesiredState = "stopped"
	DesiredRunning DesiredState = "running"
)

// DisplayHint is a precomputed status label optionally supplied by the
// server. When present it takes precedence over client-side derivation;
// older servers omit it.
type DisplayHint string

const (
	HintRunning  DisplayHint = "running"
	HintStarting DisplayHint = "starting"
	HintStopping DisplayHint = "stopping"
	HintStopped  DisplayHint = "stopped"
	HintError    DisplayHint = "error"
)

// Status is the display status shown next to a node. The zero value
// StatusNone means no indicator is shown at all.
type Status string

const (
	StatusNone     Status = ""
	StatusStopped  Status = "stopped"
	StatusBooting  Status = "booting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

var hintStatus = map[DisplayHint]Status{
	HintRunning:  StatusRunning,
	HintStarting: StatusBooting,
	HintStopping: StatusStopping,
	HintStopped:  StatusStopped,
	HintError:    StatusError,
}

// Project derives the display status for a node from its current state
// tuple. It is total over its inputs: unrecognized states and hints
// degrade to StatusNone rather than failing.
//
// Priority order, first match wins:
//  1. A server hint, if present. An error hint with a pending retry is
//     shown as booting so the indicator doesn't flash red between
//     attempts.
//  2. Client-side derivation from the actual state, with the desired
//     state breaking the tie for pending nodes.
func Project(actual ActualState, desired DesiredState, willRetry bool, hint DisplayHint) Status {
	if hint != "" {
		if hint == HintError && willRetry {
			return StatusBooting
		}
		return hintStatus[hint]
	}

	switch actual {
	case ActualRunning:
		return StatusRunning
	case ActualStopping:
		return StatusStopping
	case ActualStarting:
		return StatusBooting
	case ActualPending:
		if desired == DesiredRunning {
			return StatusBooting
		}
		return StatusStopped
	case ActualError:
		if willRetry {
			return StatusBooting
		}
		return StatusError
	case ActualStopped, ActualExited:
		return StatusStopped
	case ActualUndeployed:
		return StatusNone
	default:
		return StatusNone
	}
}
