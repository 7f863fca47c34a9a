package intel

import (
	"fmt"
	"strings"

	"github.com/devvault2026/revampai/internal/leads/domain"
)

func leadContext(lead *domain.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n", lead.Name)
	fmt.Fprintf(&b, "Category: %s\n", lead.Category)
	fmt.Fprintf(&b, "Location: %s\n", lead.Location)
	if lead.Website != "" {
		fmt.Fprintf(&b, "Current website: %s\n", lead.Website)
	} else {
		b.WriteString("Current website: none\n")
	}
	if lead.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	}
	return b.String()
}

func competitorContext(competitors []domain.Competitor) string {
	var b strings.Builder
	for _, c := range competitors {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.WhyWinning)
	}
	return b.String()
}

func scoutPrompt(req Request) string {
	mode := req.Mode
	if mode == "" {
		mode = "standard"
	}
	return fmt.Sprintf(`Find %d real-seeming small businesses in the niche %q around %q (discovery mode: %s).
For each business return name, location, phone (E.164 if possible), website (or empty), category, and a plausible contact email (or empty).

Return a JSON array of objects with keys: name, location, phone, website, category, email.`,
		req.BatchSize, req.Niche, req.Location, mode)
}

func dossierPrompt(req Request) string {
	return fmt.Sprintf(`Build a buyer-psychology profile for the owner of this business:

%s
Describe their likely priorities, anxieties about their online presence, and what sales angle would land. Two tight paragraphs.

Return JSON: {"psychology": "..."}`, leadContext(req.Lead))
}

func scorePrompt(req Request) string {
	return fmt.Sprintf(`Score how likely this business is to buy a website revamp, 0-100:

%s
Consider website quality (none or outdated scores high), category margins, and location competitiveness.

Return JSON: {"score": <0-100 integer>, "rationale": "..."}`, leadContext(req.Lead))
}

func competitorsPrompt(req Request) string {
	return fmt.Sprintf(`List the 3-5 strongest local competitors for a business in the niche %q around %q.
For each, say in one sentence why they are winning online.

Return a JSON array of objects with keys: name, whyWinning.`, req.Niche, req.Location)
}

func strategyPrompt(req Request) string {
	return fmt.Sprintf(`Write a product requirements document for a new website that would win this business more customers.

%s
Competitive landscape:
%s
Cover: positioning, page structure, key conversion features, and tone. Markdown, no preamble.`,
		leadContext(req.Lead), competitorContext(req.Lead.Competitors))
}

func siteBuildPrompt(req Request) string {
	return fmt.Sprintf(`Generate a small demo website implementing this PRD.

%s
PRD:
%s

Return JSON mapping page name to a complete standalone HTML document, e.g.
{"Home": "<!DOCTYPE html>...", "Services": "<!DOCTYPE html>...", "Contact": "<!DOCTYPE html>..."}.
Inline all CSS. No external assets.`, leadContext(req.Lead), req.Lead.StrategyDoc)
}

func outreachPrompt(req Request) string {
	return fmt.Sprintf(`Write cold outreach for this business, pitching the demo website we built for them:

%s
Return JSON: {"emailSubject": "...", "emailBody": "...", "smsBody": "..."}.
The email body is plain text, under 150 words, with a single clear call to action. The SMS is under 300 characters.`,
		leadContext(req.Lead))
}

func siteEditPrompt(req Request) string {
	return fmt.Sprintf(`Apply this instruction to the HTML page below and return the full replacement page.

Instruction: %s

Page %q:
%s

Return ONLY the complete replacement HTML document, nothing else.`,
		req.Instruction, req.PageName, req.PageHTML)
}
