package sessions

import (
	"context"
	"errors"

	"github.com/devvault2026/revampai/internal/events"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

// DefaultSessionName labels the workspace seeded on first startup.
const DefaultSessionName = "My Workspace"

// Store is the repository surface the service needs. Split out so the
// delete guards are testable without Postgres.
type Store interface {
	List(ctx context.Context) ([]Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, name string, active bool) (Session, error)
	SetActive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	OldestExcept(ctx context.Context, id uuid.UUID) (Session, error)
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// EnsureDefault seeds the initial workspace so at least one session always
// exists. Called once at startup.
func (s *Service) EnsureDefault(ctx context.Context) error {
	count, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	created, err := s.store.Create(ctx, DefaultSessionName, true)
	if err != nil {
		return err
	}
	s.log.Info("seeded default session", "sessionId", created.ID)
	return nil
}

func (s *Service) List(ctx context.Context) ([]Session, error) {
	return s.store.List(ctx)
}

func (s *Service) Create(ctx context.Context, name string) (Session, error) {
	if name == "" {
		return Session{}, apperr.Validation("a session name is required").WithOp("sessions.create")
	}
	return s.store.Create(ctx, name, false)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	if err := s.store.SetActive(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("session not found").WithOp("sessions.activate")
		}
		return err
	}
	return nil
}

// Delete removes a session with two guards: deleting the only remaining
// session is a no-op, and deleting the active session promotes the oldest
// remaining session to active.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("session not found").WithOp("sessions.delete")
		}
		return err
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		// At least one session must always exist.
		return nil
	}

	if session.Active {
		fallback, err := s.store.OldestExcept(ctx, id)
		if err != nil {
			return err
		}
		if err := s.store.SetActive(ctx, fallback.ID); err != nil {
			return err
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.SessionDeleted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: session.ID,
		Name:      session.Name,
	})
	return nil
}
