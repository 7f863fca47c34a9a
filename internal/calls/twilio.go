package calls

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/devvault2026/revampai/platform/config"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway implements Gateway against the Twilio voice API. The agent
// persona's script is rendered into TwiML and spoken by the provider.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string
}

var _ Gateway = (*TwilioGateway)(nil)

// NewTwilioGateway builds the gateway from telephony credentials.
func NewTwilioGateway(cfg config.TelephonyConfig) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.GetTwilioAccountSID(),
		Password: cfg.GetTwilioAuthToken(),
	})
	return &TwilioGateway{client: client, from: cfg.GetTwilioFromNumber()}
}

func (g *TwilioGateway) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	params := &twilioapi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(g.from)
	params.SetTwiml(renderTwiML(req.Script))

	resp, err := g.client.Api.CreateCall(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned no call sid")
	}
	return *resp.Sid, nil
}

func (g *TwilioGateway) PollStatus(ctx context.Context, callID string) (CallStatus, error) {
	resp, err := g.client.Api.FetchCall(callID, &twilioapi.FetchCallParams{})
	if err != nil {
		return CallStatus{}, err
	}

	status := CallStatus{Phase: PhaseQueued}
	if resp.Status != nil {
		status.Phase = mapTwilioStatus(*resp.Status)
	}
	if resp.Duration != nil {
		if seconds, err := strconv.Atoi(*resp.Duration); err == nil {
			status.DurationSeconds = seconds
		}
	}
	if status.Phase == PhaseEnded && resp.Status != nil {
		status.Summary = fmt.Sprintf("Call finished with provider status %q.", *resp.Status)
	}
	return status, nil
}

// mapTwilioStatus folds the provider's status vocabulary onto the
// controller's closed phase set.
func mapTwilioStatus(status string) string {
	switch status {
	case "queued", "initiated", "ringing":
		return PhaseQueued
	case "in-progress":
		return PhaseInProgress
	case "completed", "busy", "failed", "no-answer", "canceled":
		return PhaseEnded
	default:
		return PhaseQueued
	}
}

func renderTwiML(script string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(script))
	return fmt.Sprintf(`<Response><Say voice="Polly.Joanna">%s</Say><Pause length="2"/></Response>`, escaped.String())
}
