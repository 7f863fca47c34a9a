// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/devvault2026/revampai/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Lead Lifecycle Events
// =============================================================================

// LeadScouted is published for each lead produced by a scouting run.
type LeadScouted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
	Company   string    `json:"company"`
	Niche     string    `json:"niche"`
	Location  string    `json:"location"`
}

func (e LeadScouted) EventName() string { return "leads.lead.scouted" }

// LeadEnriched is published when a lead's dossier completes.
type LeadEnriched struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
	Score     int       `json:"score"`
}

func (e LeadEnriched) EventName() string { return "leads.lead.enriched" }

// LeadStrategyReady is published when strategy generation completes.
type LeadStrategyReady struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
}

func (e LeadStrategyReady) EventName() string { return "leads.lead.strategy_ready" }

// LeadOutreachReady is published when a lead's demo site and outreach
// draft are both generated.
type LeadOutreachReady struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
}

func (e LeadOutreachReady) EventName() string { return "leads.lead.outreach_ready" }

// LeadContacted is published when an outreach message is sent to a lead.
type LeadContacted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
	Channel   string    `json:"channel"`
}

func (e LeadContacted) EventName() string { return "leads.lead.contacted" }

// LeadReplied is published when an inbound reply is matched to a lead.
type LeadReplied struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    string    `json:"leadId"`
	MessageID uuid.UUID `json:"messageId"`
}

func (e LeadReplied) EventName() string { return "leads.lead.replied" }

// =============================================================================
// Call Events
// =============================================================================

// CallStarted is published when an outbound call begins dialing.
type CallStarted struct {
	BaseEvent
	SessionID  uuid.UUID `json:"sessionId"`
	LeadID     string    `json:"leadId"`
	ProviderID string    `json:"providerId"`
}

func (e CallStarted) EventName() string { return "calls.call.started" }

// CallEnded is published when an outbound call completes and its log is recorded.
type CallEnded struct {
	BaseEvent
	SessionID       uuid.UUID `json:"sessionId"`
	LeadID          string    `json:"leadId"`
	CallLogID       uuid.UUID `json:"callLogId"`
	DurationSeconds int       `json:"durationSeconds"`
	Outcome         string    `json:"outcome"`
}

func (e CallEnded) EventName() string { return "calls.call.ended" }

// =============================================================================
// Session Events
// =============================================================================

// SessionDeleted is published when a workspace session is removed.
type SessionDeleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
}

func (e SessionDeleted) EventName() string { return "sessions.session.deleted" }
