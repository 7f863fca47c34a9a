// Package outreach delivers a lead's generated email draft and records the
// send in the lead's conversation history.
package outreach

import (
	"context"
	"errors"
	"time"

	"github.com/devvault2026/revampai/internal/events"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

// LeadStore is the slice of the leads repository the sender reads from.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// Recorder appends the sent email to the lead's conversation history and
// flips the lead to Contacted.
type Recorder interface {
	RecordOutbound(ctx context.Context, leadID uuid.UUID, sender, content string) (domain.Message, error)
}

// Deferrer queues a send for later delivery.
type Deferrer interface {
	ScheduleOutreachSend(ctx context.Context, leadID string, runAt time.Time) error
}

type Service struct {
	leads    LeadStore
	sender   Sender
	recorder Recorder
	deferrer Deferrer
	cfg      config.OutreachConfig
	log      *logger.Logger
}

func NewService(leads LeadStore, sender Sender, recorder Recorder, cfg config.OutreachConfig, log *logger.Logger) *Service {
	return &Service{leads: leads, sender: sender, recorder: recorder, cfg: cfg, log: log}
}

// SetDeferrer wires the task scheduler. Without one, deferred sends fail
// with a configuration error; immediate sends are unaffected.
func (s *Service) SetDeferrer(d Deferrer) {
	s.deferrer = d
}

// Send delivers the stored outreach draft to the lead's email address.
// The draft must exist before sending; nothing is generated here.
func (s *Service) Send(ctx context.Context, leadID uuid.UUID) (domain.Message, error) {
	const op = "outreach.send"

	if !s.cfg.IsOutreachEnabled() {
		return domain.Message{}, apperr.Configuration("email delivery is not configured").WithOp(op)
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Message{}, apperr.NotFound("lead not found").WithOp(op)
		}
		return domain.Message{}, err
	}

	if lead.Email == "" {
		return domain.Message{}, apperr.Precondition("lead has no email address").WithOp(op)
	}
	if lead.OutreachSubject == "" || lead.OutreachBody == "" {
		return domain.Message{}, apperr.Precondition("lead has no outreach draft").WithOp(op)
	}

	if err := s.sender.Send(ctx, lead.Email, lead.OutreachSubject, lead.OutreachBody); err != nil {
		s.log.Error("outreach send failed", "lead_id", leadID.String(), "error", err)
		return domain.Message{}, apperr.Gateway("failed to send outreach email", err).WithOp(op)
	}

	msg, err := s.recorder.RecordOutbound(ctx, leadID, s.cfg.GetOutreachFromAddress(), lead.OutreachSubject+"\n\n"+lead.OutreachBody)
	if err != nil {
		// The email left the building; surface the bookkeeping failure
		// without pretending the send failed.
		s.log.Error("outreach sent but not recorded", "lead_id", leadID.String(), "error", err)
		return domain.Message{}, err
	}

	s.log.Info("outreach email sent", "lead_id", leadID.String(), "to", lead.Email)
	return msg, nil
}

// AutoSend delivers the drafted email as soon as a lead's pipeline
// completes. Leads without an email address (or other precondition
// failures) are skipped, not errored: only gateway failures propagate
// so the bus logs real delivery problems and nothing else.
func (s *Service) AutoSend(ctx context.Context, e events.Event) error {
	ready, ok := e.(events.LeadOutreachReady)
	if !ok {
		return nil
	}

	leadID, err := uuid.Parse(ready.LeadID)
	if err != nil {
		return nil
	}

	if _, err := s.Send(ctx, leadID); err != nil {
		if apperr.Is(err, apperr.KindGateway) {
			return err
		}
		s.log.Info("skipping auto outreach", "lead_id", ready.LeadID, "reason", err)
	}
	return nil
}

// Defer validates the same preconditions as Send, then queues the delivery
// for sendAt instead of sending now.
func (s *Service) Defer(ctx context.Context, leadID uuid.UUID, sendAt time.Time) error {
	const op = "outreach.defer"

	if s.deferrer == nil {
		return apperr.Configuration("task scheduling is not configured").WithOp(op)
	}
	if !s.cfg.IsOutreachEnabled() {
		return apperr.Configuration("email delivery is not configured").WithOp(op)
	}
	if !sendAt.After(time.Now()) {
		return apperr.Validation("sendAt must be in the future").WithOp(op)
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found").WithOp(op)
		}
		return err
	}
	if lead.Email == "" {
		return apperr.Precondition("lead has no email address").WithOp(op)
	}
	if lead.OutreachSubject == "" || lead.OutreachBody == "" {
		return apperr.Precondition("lead has no outreach draft").WithOp(op)
	}

	if err := s.deferrer.ScheduleOutreachSend(ctx, leadID.String(), sendAt); err != nil {
		return apperr.Internal("failed to queue outreach send").WithOp(op)
	}

	s.log.Info("outreach email queued", "lead_id", leadID.String(), "send_at", sendAt)
	return nil
}
