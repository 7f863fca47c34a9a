// Package inbox manages a lead's conversation history and the side status
// transitions it drives: an outbound message marks the lead Contacted, an
// inbound reply marks it Replied.
package inbox

import (
	"context"
	"errors"

	"github.com/devvault2026/revampai/internal/events"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

// LeadStore is the slice of the leads repository the inbox writes through.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	FindByEmail(ctx context.Context, email string) (domain.Lead, error)
	AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	MarkMessageRead(ctx context.Context, messageID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type Service struct {
	leads LeadStore
	bus   events.Bus
	log   *logger.Logger
}

func NewService(leads LeadStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{leads: leads, bus: bus, log: log}
}

// RecordOutbound appends a sent message and flips the lead to Contacted.
func (s *Service) RecordOutbound(ctx context.Context, leadID uuid.UUID, sender, content string) (domain.Message, error) {
	lead, err := s.getLead(ctx, leadID, "inbox.record_outbound")
	if err != nil {
		return domain.Message{}, err
	}
	if !lead.HasContactInfo() {
		return domain.Message{}, apperr.Configuration("lead has no contact info").WithOp("inbox.record_outbound")
	}

	msg, err := s.append(ctx, domain.Message{
		ID:        uuid.New(),
		LeadID:    leadID,
		Direction: domain.MessageDirectionOutbound,
		Sender:    sender,
		Content:   content,
		Read:      true,
	}, "inbox.record_outbound")
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.leads.UpdateStatus(ctx, leadID, domain.StatusContacted); err != nil {
		s.log.DatabaseError("inbox.mark_contacted", err)
	}

	s.bus.Publish(ctx, events.LeadContacted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: lead.SessionID,
		LeadID:    leadID.String(),
		Channel:   "email",
	})
	return msg, nil
}

// RecordInbound appends a received message and flips the lead to Replied.
func (s *Service) RecordInbound(ctx context.Context, leadID uuid.UUID, sender, content string) (domain.Message, error) {
	lead, err := s.getLead(ctx, leadID, "inbox.record_inbound")
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := s.append(ctx, domain.Message{
		ID:        uuid.New(),
		LeadID:    leadID,
		Direction: domain.MessageDirectionInbound,
		Sender:    sender,
		Content:   content,
		Read:      false,
	}, "inbox.record_inbound")
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.leads.UpdateStatus(ctx, leadID, domain.StatusReplied); err != nil {
		s.log.DatabaseError("inbox.mark_replied", err)
	}

	s.bus.Publish(ctx, events.LeadReplied{
		BaseEvent: events.NewBaseEvent(),
		SessionID: lead.SessionID,
		LeadID:    leadID.String(),
		MessageID: msg.ID,
	})
	return msg, nil
}

// MatchInbound attaches an inbound email to the lead owning the sender
// address. Unmatched senders are skipped, not an error.
func (s *Service) MatchInbound(ctx context.Context, senderEmail, content string) (bool, error) {
	lead, err := s.leads.FindByEmail(ctx, senderEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if _, err := s.RecordInbound(ctx, lead.ID, senderEmail, content); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) MarkRead(ctx context.Context, messageID uuid.UUID) error {
	if err := s.leads.MarkMessageRead(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperr.NotFound("message not found").WithOp("inbox.mark_read")
		}
		return err
	}
	return nil
}

func (s *Service) getLead(ctx context.Context, leadID uuid.UUID, op string) (domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found").WithOp(op)
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

func (s *Service) append(ctx context.Context, msg domain.Message, op string) (domain.Message, error) {
	stored, err := s.leads.AppendMessage(ctx, msg)
	if err != nil {
		s.log.DatabaseError(op, err)
		return domain.Message{}, apperr.Internal("failed to store message").WithOp(op)
	}
	return stored, nil
}
