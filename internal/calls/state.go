// Package calls manages the single active outbound voice call: placement,
// status polling, and recording the terminal call log onto the lead.
package calls

import "context"

// Controller states. idle is both the initial state and, after a short
// reset delay following ended, the terminal state.
const (
	StateIdle      = "idle"
	StateDialing   = "dialing"
	StateConnected = "connected"
	StateEnded     = "ended"
)

// Gateway-reported call phases.
const (
	PhaseQueued     = "queued"
	PhaseInProgress = "in-progress"
	PhaseEnded      = "ended"
)

// CallRequest carries everything the telephony provider needs to start a call.
type CallRequest struct {
	To     string
	Script string
}

// CallStatus is one observation of a remote call.
type CallStatus struct {
	Phase           string
	DurationSeconds int
	Summary         string
}

// Gateway is the telephony capability surface. PollStatus errors are treated
// as transient by the controller and retried on the next tick.
type Gateway interface {
	PlaceCall(ctx context.Context, req CallRequest) (callID string, err error)
	PollStatus(ctx context.Context, callID string) (CallStatus, error)
}
