// Package domain provides the agent persona model used as AI call context.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Authority levels controlling how assertively a persona operates.
const (
	AuthorityAdvisory   = "advisory"
	AuthorityAssertive  = "assertive"
	AuthorityAutonomous = "autonomous"
)

// Responsibility is one weighted behavior rule of a persona.
type Responsibility struct {
	Rule    string `json:"rule"`
	Weight  int    `json:"weight"`
	Enabled bool   `json:"enabled"`
}

// OutputFormat constrains the shape of a persona's replies.
type OutputFormat struct {
	Style     string `json:"style"`
	MaxLength int    `json:"maxLength"`
	Language  string `json:"language"`
}

// Knobs are the persona's behavior dials, each 0-100.
type Knobs struct {
	Creativity int    `json:"creativity"`
	Verbosity  int    `json:"verbosity"`
	Tone       string `json:"tone"`
}

// Profile describes an AI persona's behavior contract. Profiles are selected
// per operation and have no lifecycle coupling to leads or sessions.
type Profile struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Objective        string           `json:"objective"`
	NonGoals         string           `json:"nonGoals"`
	Authority        string           `json:"authority"`
	Responsibilities []Responsibility `json:"responsibilities"`
	OutputFormat     OutputFormat     `json:"outputFormat"`
	Knobs            Knobs            `json:"knobs"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// SystemInstruction renders the profile as a system prompt block. Disabled
// responsibilities are omitted; enabled ones are ordered as stored, with
// their weight stated so the model can prioritize.
func (p *Profile) SystemInstruction() string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\nObjective: %s\n", p.Name, p.Objective)
	if p.NonGoals != "" {
		fmt.Fprintf(&b, "You must NOT: %s\n", p.NonGoals)
	}
	if p.Authority != "" {
		fmt.Fprintf(&b, "Authority level: %s\n", p.Authority)
	}

	enabled := make([]Responsibility, 0, len(p.Responsibilities))
	for _, r := range p.Responsibilities {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	if len(enabled) > 0 {
		b.WriteString("Responsibilities:\n")
		for _, r := range enabled {
			fmt.Fprintf(&b, "- %s (weight %d)\n", r.Rule, r.Weight)
		}
	}

	if p.OutputFormat.Style != "" {
		fmt.Fprintf(&b, "Output style: %s\n", p.OutputFormat.Style)
	}
	if p.OutputFormat.MaxLength > 0 {
		fmt.Fprintf(&b, "Keep replies under %d words.\n", p.OutputFormat.MaxLength)
	}
	if p.OutputFormat.Language != "" {
		fmt.Fprintf(&b, "Reply in %s.\n", p.OutputFormat.Language)
	}

	fmt.Fprintf(&b, "Creativity: %d/100. Verbosity: %d/100.", p.Knobs.Creativity, p.Knobs.Verbosity)
	if p.Knobs.Tone != "" {
		fmt.Fprintf(&b, " Tone: %s.", p.Knobs.Tone)
	}

	return b.String()
}

// Default returns the built-in persona used when no profile is selected.
func Default() *Profile {
	return &Profile{
		Name:      "Revamp Strategist",
		Objective: "Help a digital agency win small-business clients with sharp, honest pitches.",
		Authority: AuthorityAdvisory,
		Knobs:     Knobs{Creativity: 50, Verbosity: 50, Tone: "professional"},
	}
}
