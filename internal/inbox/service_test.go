package inbox

import (
	"context"
	"testing"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	platformevents "github.com/devvault2026/revampai/platform/events"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	leads    map[uuid.UUID]domain.Lead
	byEmail  map[string]domain.Lead
	messages []domain.Message
	statuses map[uuid.UUID]string
	read     map[uuid.UUID]bool
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{
		leads:    make(map[uuid.UUID]domain.Lead),
		byEmail:  make(map[string]domain.Lead),
		statuses: make(map[uuid.UUID]string),
		read:     make(map[uuid.UUID]bool),
	}
}

func (f *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeadStore) FindByEmail(_ context.Context, email string) (domain.Lead, error) {
	lead, ok := f.byEmail[email]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeadStore) AppendMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeLeadStore) MarkMessageRead(_ context.Context, messageID uuid.UUID) error {
	for _, msg := range f.messages {
		if msg.ID == messageID {
			f.read[messageID] = true
			return nil
		}
	}
	return repository.ErrMessageNotFound
}

func (f *fakeLeadStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}

func newTestService(store *fakeLeadStore) *Service {
	log := logger.New("development")
	return NewService(store, platformevents.NewInMemoryBus(log), log)
}

func seedLead(store *fakeLeadStore, email string) domain.Lead {
	lead := domain.Lead{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Name:      "Harbor Dental",
		Email:     email,
		Status:    domain.StatusOutreachReady,
	}
	store.leads[lead.ID] = lead
	if email != "" {
		store.byEmail[email] = lead
	}
	return lead
}

func TestRecordOutboundMarksContacted(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "owner@harbordental.com")
	service := newTestService(store)

	msg, err := service.RecordOutbound(context.Background(), lead.ID, "ops@revampai.dev", "Hi there")
	if err != nil {
		t.Fatalf("RecordOutbound() error = %v", err)
	}
	if msg.Direction != domain.MessageDirectionOutbound {
		t.Errorf("direction = %q, want %q", msg.Direction, domain.MessageDirectionOutbound)
	}
	if !msg.Read {
		t.Error("outbound message should be stored as read")
	}
	if got := store.statuses[lead.ID]; got != domain.StatusContacted {
		t.Errorf("status = %q, want %q", got, domain.StatusContacted)
	}
}

func TestRecordOutboundRequiresContactInfo(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "")
	service := newTestService(store)

	_, err := service.RecordOutbound(context.Background(), lead.ID, "ops@revampai.dev", "Hi")
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("RecordOutbound() error = %v, want configuration error", err)
	}
	if len(store.messages) != 0 {
		t.Errorf("stored %d messages, want 0", len(store.messages))
	}
}

func TestRecordInboundMarksReplied(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "owner@harbordental.com")
	service := newTestService(store)

	msg, err := service.RecordInbound(context.Background(), lead.ID, "owner@harbordental.com", "Sounds interesting")
	if err != nil {
		t.Fatalf("RecordInbound() error = %v", err)
	}
	if msg.Read {
		t.Error("inbound message should be stored unread")
	}
	if got := store.statuses[lead.ID]; got != domain.StatusReplied {
		t.Errorf("status = %q, want %q", got, domain.StatusReplied)
	}
}

func TestMatchInbound(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "owner@harbordental.com")
	service := newTestService(store)

	matched, err := service.MatchInbound(context.Background(), "owner@harbordental.com", "Re: your proposal")
	if err != nil {
		t.Fatalf("MatchInbound() error = %v", err)
	}
	if !matched {
		t.Fatal("expected sender to match a lead")
	}
	if len(store.messages) != 1 || store.messages[0].LeadID != lead.ID {
		t.Fatalf("expected one message for lead %s, got %+v", lead.ID, store.messages)
	}

	matched, err = service.MatchInbound(context.Background(), "stranger@example.com", "spam")
	if err != nil {
		t.Fatalf("MatchInbound() unknown sender error = %v", err)
	}
	if matched {
		t.Error("unknown sender should not match")
	}
	if len(store.messages) != 1 {
		t.Errorf("unknown sender stored a message: %d total", len(store.messages))
	}
}

func TestMarkRead(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "owner@harbordental.com")
	service := newTestService(store)

	msg, err := service.RecordInbound(context.Background(), lead.ID, lead.Email, "hello")
	if err != nil {
		t.Fatalf("RecordInbound() error = %v", err)
	}

	if err := service.MarkRead(context.Background(), msg.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if !store.read[msg.ID] {
		t.Error("message not marked read")
	}

	if err := service.MarkRead(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("MarkRead(unknown) error = %v, want not found", err)
	}
}
