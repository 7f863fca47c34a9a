package calls

import (
	"context"
	"errors"
	"sync"
	"time"

	agentdomain "github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/internal/events"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"
	"github.com/devvault2026/revampai/platform/phone"

	"github.com/google/uuid"
)

// Call log terminal statuses.
const (
	CallStatusCompleted = "completed"
	CallStatusHangup    = "hangup"
	CallStatusAbandoned = "abandoned"
)

// LeadStore is the slice of the leads repository the controller writes through.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	AppendCallLog(ctx context.Context, log domain.CallLog) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ProfileProvider resolves the voice persona for the call script.
type ProfileProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*agentdomain.Profile, error)
}

// Options tune the controller's timing. Zero values take the defaults.
type Options struct {
	PollInterval    time.Duration // default 2s
	DurationTick    time.Duration // default 1s
	ResetDelay      time.Duration // default 3s
	MaxPollDuration time.Duration // default 10m; polls are abandoned past this
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.DurationTick <= 0 {
		o.DurationTick = time.Second
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = 3 * time.Second
	}
	if o.MaxPollDuration <= 0 {
		o.MaxPollDuration = 10 * time.Minute
	}
	return o
}

// Snapshot is the externally visible controller state.
type Snapshot struct {
	State           string     `json:"state"`
	CallID          string     `json:"callId,omitempty"`
	LeadID          *uuid.UUID `json:"leadId,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`
}

// Controller owns the call state machine. At most one call is active at a
// time; a second PlaceCall while not idle is rejected.
type Controller struct {
	gateway  Gateway
	leads    LeadStore
	profiles ProfileProvider
	cfg      config.TelephonyConfig
	bus      events.Bus
	log      *logger.Logger
	opts     Options

	mu         sync.Mutex
	state      string
	callID     string
	leadID     uuid.UUID
	sessionID  uuid.UUID
	duration   int
	lastStatus CallStatus
	logWritten bool
	cancelPoll context.CancelFunc
	resetTimer *time.Timer
}

// New creates an idle controller.
func New(gateway Gateway, leads LeadStore, profiles ProfileProvider, cfg config.TelephonyConfig, bus events.Bus, log *logger.Logger, opts Options) *Controller {
	return &Controller{
		gateway:  gateway,
		leads:    leads,
		profiles: profiles,
		cfg:      cfg,
		bus:      bus,
		log:      log,
		opts:     opts.withDefaults(),
		state:    StateIdle,
	}
}

// Status returns the current snapshot.
func (c *Controller) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state, CallID: c.callID, DurationSeconds: c.duration}
	if c.leadID != uuid.Nil {
		leadID := c.leadID
		snap.LeadID = &leadID
	}
	return snap
}

// PlaceCall starts an outbound call to the lead. Configuration problems
// (missing credentials, no phone number) fail before the gateway is touched.
// A gateway rejection surfaces its message verbatim and leaves the
// controller idle.
func (c *Controller) PlaceCall(ctx context.Context, leadID uuid.UUID, profileID *uuid.UUID) (Snapshot, error) {
	if !c.cfg.IsTelephonyEnabled() {
		return c.Status(), apperr.Configuration("telephony credentials are not configured").WithOp("calls.place")
	}

	lead, err := c.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(), apperr.NotFound("lead not found").WithOp("calls.place")
		}
		return c.Status(), apperr.Internal("failed to load lead").WithOp("calls.place")
	}
	if lead.Phone == "" || !phone.IsDialable(lead.Phone) {
		return c.Status(), apperr.Configuration("lead has no dialable phone number").WithOp("calls.place")
	}

	profile := agentdomain.Default()
	if profileID != nil && c.profiles != nil {
		profile, err = c.profiles.GetByID(ctx, *profileID)
		if err != nil {
			return c.Status(), err
		}
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return c.Status(), apperr.Conflict("a call is already active").WithOp("calls.place")
	}
	// Reserve the slot before the provider round-trip so a concurrent
	// PlaceCall is rejected instead of dialing twice.
	c.state = StateDialing
	c.callID = ""
	c.mu.Unlock()

	callID, err := c.gateway.PlaceCall(ctx, CallRequest{To: lead.Phone, Script: profile.SystemInstruction()})
	if err != nil {
		// Surface the provider's message verbatim and release the slot.
		c.mu.Lock()
		if c.state == StateDialing && c.callID == "" {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return c.Status(), apperr.Gateway(err.Error(), err).WithOp("calls.place")
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.callID = callID
	c.leadID = lead.ID
	c.sessionID = lead.SessionID
	c.duration = 0
	c.lastStatus = CallStatus{Phase: PhaseQueued}
	c.logWritten = false
	c.cancelPoll = cancel
	c.mu.Unlock()

	c.bus.Publish(ctx, events.CallStarted{
		BaseEvent:  events.NewBaseEvent(),
		SessionID:  lead.SessionID,
		LeadID:     lead.ID.String(),
		ProviderID: callID,
	})

	go c.runPolling(pollCtx, callID)
	go c.runDurationCounter(pollCtx)

	return c.Status(), nil
}

// Hangup is the user-initiated local transition to ended. It does not
// guarantee the remote call terminates; the last observed status is what
// gets logged.
func (c *Controller) Hangup(ctx context.Context) Snapshot {
	c.mu.Lock()
	if c.callID == "" || (c.state != StateDialing && c.state != StateConnected) {
		c.mu.Unlock()
		return c.Status()
	}
	last := c.lastStatus
	last.DurationSeconds = c.duration
	if last.Summary == "" {
		last.Summary = "Call ended by operator."
	}
	c.mu.Unlock()

	c.finish(ctx, last, CallStatusHangup)
	return c.Status()
}

// Abandon force-terminates a stale call (watchdog path).
func (c *Controller) Abandon(ctx context.Context, callID string) {
	c.mu.Lock()
	if c.callID != callID || (c.state != StateDialing && c.state != StateConnected) {
		c.mu.Unlock()
		return
	}
	status := CallStatus{Phase: PhaseEnded, DurationSeconds: c.duration, Summary: "Call abandoned after exceeding the maximum poll duration."}
	c.mu.Unlock()

	c.log.Warn("abandoning stale call", "callId", callID)
	c.finish(ctx, status, CallStatusAbandoned)
}

// runPolling queries the gateway at a fixed interval while the call is
// dialing or connected. A failed poll is swallowed and retried next tick;
// only an explicit ended phase (or the max poll duration) stops the loop.
func (c *Controller) runPolling(ctx context.Context, callID string) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	deadline := time.Now().Add(c.opts.MaxPollDuration)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().After(deadline) {
				c.Abandon(ctx, callID)
				return
			}

			status, err := c.gateway.PollStatus(ctx, callID)
			if err != nil {
				c.log.Debug("call status poll failed, retrying", "callId", callID, "error", err)
				continue
			}

			c.mu.Lock()
			c.lastStatus = status
			c.mu.Unlock()

			switch status.Phase {
			case PhaseInProgress:
				c.markConnected()
			case PhaseEnded:
				c.finish(ctx, status, CallStatusCompleted)
				return
			}
		}
	}
}

// runDurationCounter increments the visible duration once per tick, only
// while connected. It resets when the call leaves connected.
func (c *Controller) runDurationCounter(ctx context.Context) {
	ticker := time.NewTicker(c.opts.DurationTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state == StateConnected {
				c.duration++
			}
			c.mu.Unlock()
		}
	}
}

// markConnected transitions dialing to connected exactly once.
func (c *Controller) markConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDialing {
		return
	}
	c.state = StateConnected
	c.duration = 0
	c.log.Info("call connected", "callId", c.callID, "leadId", c.leadID)
}

// finish performs the terminal transition: exactly one call log is appended,
// the lead flips to Called, polling stops, and after the reset delay the
// controller returns to idle. Racing terminal observations (a poll tick and
// a hangup, or two ticks) collapse into a single log via the written guard
// and the store's idempotent append.
func (c *Controller) finish(ctx context.Context, status CallStatus, logStatus string) {
	c.mu.Lock()
	if c.state != StateDialing && c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	if c.logWritten {
		c.mu.Unlock()
		return
	}
	c.logWritten = true
	c.state = StateEnded
	callID := c.callID
	leadID := c.leadID
	sessionID := c.sessionID
	if c.cancelPoll != nil {
		c.cancelPoll()
	}
	c.mu.Unlock()

	duration := status.DurationSeconds
	summary := status.Summary
	if summary == "" {
		summary = "No call summary available."
	}

	callLog := domain.CallLog{
		ID:              uuid.New(),
		LeadID:          leadID,
		CallSID:         callID,
		Status:          logStatus,
		DurationSeconds: duration,
		Summary:         summary,
	}

	persistCtx := context.WithoutCancel(ctx)
	inserted, err := c.leads.AppendCallLog(persistCtx, callLog)
	if err != nil {
		c.log.DatabaseError("calls.append_log", err)
	}
	if inserted {
		if err := c.leads.UpdateStatus(persistCtx, leadID, domain.StatusCalled); err != nil {
			c.log.DatabaseError("calls.update_lead_status", err)
		}
		c.bus.Publish(persistCtx, events.CallEnded{
			BaseEvent:       events.NewBaseEvent(),
			SessionID:       sessionID,
			LeadID:          leadID.String(),
			CallLogID:       callLog.ID,
			DurationSeconds: duration,
			Outcome:         logStatus,
		})
	}

	c.mu.Lock()
	c.resetTimer = time.AfterFunc(c.opts.ResetDelay, c.reset)
	c.mu.Unlock()
}

// reset returns the controller to idle for the next call.
func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnded {
		return
	}
	c.state = StateIdle
	c.callID = ""
	c.leadID = uuid.Nil
	c.sessionID = uuid.Nil
	c.duration = 0
	c.lastStatus = CallStatus{}
	c.cancelPoll = nil
}
