package domain

import "testing"

func TestAdvanceStatusNeverRegresses(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		want    string
	}{
		{"scouted advances to dossier", StatusScouted, StatusDossierReady, StatusDossierReady},
		{"dossier advances to strategy", StatusDossierReady, StatusStrategyReady, StatusStrategyReady},
		{"strategy advances to outreach", StatusStrategyReady, StatusOutreachReady, StatusOutreachReady},
		{"rerun holds at dossier", StatusDossierReady, StatusDossierReady, StatusDossierReady},
		{"strategy never regresses to dossier", StatusStrategyReady, StatusDossierReady, StatusStrategyReady},
		{"outreach never regresses to scouted", StatusOutreachReady, StatusScouted, StatusOutreachReady},
		{"skip-ahead target applies", StatusScouted, StatusOutreachReady, StatusOutreachReady},
		{"called is not overwritten by enrichment", StatusCalled, StatusDossierReady, StatusCalled},
		{"contacted is not overwritten by enrichment", StatusContacted, StatusOutreachReady, StatusContacted},
		{"replied is not overwritten by enrichment", StatusReplied, StatusStrategyReady, StatusReplied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdvanceStatus(tt.current, tt.target); got != tt.want {
				t.Errorf("AdvanceStatus(%q, %q) = %q, want %q", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestStatusRank(t *testing.T) {
	tests := []struct {
		status string
		want   int
	}{
		{StatusScouted, 0},
		{StatusDossierReady, 1},
		{StatusStrategyReady, 2},
		{StatusOutreachReady, 3},
		{StatusCalled, -1},
		{StatusContacted, -1},
		{"Bogus", -1},
	}

	for _, tt := range tests {
		if got := StatusRank(tt.status); got != tt.want {
			t.Errorf("StatusRank(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestIsKnownStatus(t *testing.T) {
	for _, status := range []string{
		StatusScouted, StatusDossierReady, StatusStrategyReady, StatusOutreachReady,
		StatusContacted, StatusReplied, StatusCalled,
	} {
		if !IsKnownStatus(status) {
			t.Errorf("IsKnownStatus(%q) = false, want true", status)
		}
	}
	if IsKnownStatus("Archived") {
		t.Error("IsKnownStatus(\"Archived\") = true, want false")
	}
}

func TestHasDossier(t *testing.T) {
	score := 70
	lead := Lead{Psychology: "risk-averse owner", PropensityScore: &score, Competitors: []Competitor{{Name: "Acme"}}}
	if !lead.HasDossier() {
		t.Error("expected lead with all three dossier fields to report HasDossier")
	}

	partial := Lead{Psychology: "risk-averse owner", PropensityScore: &score}
	if partial.HasDossier() {
		t.Error("lead missing competitors must not report HasDossier")
	}
}
