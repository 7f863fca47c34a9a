// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mainline lifecycle statuses, strictly ordered. A lead only ever moves
// forward through these.
const (
	StatusScouted       = "Scouted"
	StatusDossierReady  = "Dossier_Ready"
	StatusStrategyReady = "Strategy_Ready"
	StatusOutreachReady = "Outreach_Ready"
)

// Side statuses, reachable from any state once contact info exists. They are
// entered through the inbox and phone flows, not the enrichment pipeline.
const (
	StatusContacted = "Contacted"
	StatusReplied   = "Replied"
	StatusCalled    = "Called"
)

// DefaultDealValue is the deal value attached when outreach material is
// generated. Pricing is uniform across leads at this stage of the funnel.
const DefaultDealValue = 2500

var mainlineRank = map[string]int{
	StatusScouted:       0,
	StatusDossierReady:  1,
	StatusStrategyReady: 2,
	StatusOutreachReady: 3,
}

var sideStatuses = map[string]bool{
	StatusContacted: true,
	StatusReplied:   true,
	StatusCalled:    true,
}

// StatusRank returns the position of a mainline status in the ordered
// progression, or -1 for side and unknown statuses.
func StatusRank(status string) int {
	rank, ok := mainlineRank[status]
	if !ok {
		return -1
	}
	return rank
}

// IsSideStatus reports whether the status was entered via an out-of-band
// contact flow rather than the enrichment pipeline.
func IsSideStatus(status string) bool {
	return sideStatuses[status]
}

// IsKnownStatus reports whether the status belongs to the closed status set.
func IsKnownStatus(status string) bool {
	return sideStatuses[status] || StatusRank(status) >= 0
}

// AdvanceStatus computes the status a lead should hold after an enrichment
// stage targeting the given mainline status. Statuses never regress: a lead
// already past the target keeps its current status, and a side status is
// never overwritten by an enrichment stage.
func AdvanceStatus(current, target string) string {
	if IsSideStatus(current) {
		return current
	}
	if StatusRank(target) > StatusRank(current) {
		return target
	}
	return current
}

// Competitor is one entry of a lead's competitive landscape.
type Competitor struct {
	Name       string `json:"name"`
	WhyWinning string `json:"whyWinning"`
}

// CallLog is an immutable record of one completed call attempt.
type CallLog struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	CallSID         string    `json:"callSid"`
	Status          string    `json:"status"`
	DurationSeconds int       `json:"durationSeconds"`
	Summary         string    `json:"summary"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Message directions.
const (
	MessageDirectionInbound  = "in"
	MessageDirectionOutbound = "out"
)

// Message is one entry of a lead's append-only conversation history.
type Message struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Direction string    `json:"direction"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lead represents one prospective business target. Discovery fields are set
// once at scouting time; intelligence fields are populated progressively and
// only additively by the lifecycle controller.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`

	// Discovery fields.
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Category string `json:"category"`
	Email    string `json:"email"`

	// Derived intelligence fields.
	Psychology      string            `json:"psychology,omitempty"`
	PropensityScore *int              `json:"propensityScore,omitempty"`
	Competitors     []Competitor      `json:"competitors,omitempty"`
	StrategyDoc     string            `json:"strategyDoc,omitempty"`
	SitePages       map[string]string `json:"sitePages,omitempty"`
	OutreachSubject string            `json:"outreachSubject,omitempty"`
	OutreachBody    string            `json:"outreachBody,omitempty"`
	OutreachSMS     string            `json:"outreachSms,omitempty"`
	DealValue       int               `json:"dealValue,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasContactInfo reports whether the lead can be contacted at all.
func (l *Lead) HasContactInfo() bool {
	return l.Phone != "" || l.Email != ""
}

// HasDossier reports whether the dossier stage has completed: all three
// intelligence fields that the stage populates atomically are present.
func (l *Lead) HasDossier() bool {
	return l.Psychology != "" && l.PropensityScore != nil && len(l.Competitors) > 0
}

// HasStrategy reports whether a strategy document exists.
func (l *Lead) HasStrategy() bool {
	return l.StrategyDoc != ""
}
