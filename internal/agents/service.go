package agents

import (
	"context"
	"errors"

	"github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/validator"

	"github.com/google/uuid"
)

// Tester previews a persona against a sample input.
type Tester interface {
	Test(ctx context.Context, profile *domain.Profile, input string) (string, error)
}

type Service struct {
	repo   *Repository
	tester Tester
	val    *validator.Validator
}

// NewService creates the agents service. tester may be nil when no AI key
// is configured; persona previews then fail with a configuration error.
func NewService(repo *Repository, tester Tester, val *validator.Validator) *Service {
	return &Service{repo: repo, tester: tester, val: val}
}

func (s *Service) List(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.List(ctx)
}

// GetByID resolves a profile. Implements the lifecycle and call
// controllers' ProfileProvider.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("agent profile not found").WithOp("agents.get")
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Service) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	if err := s.validateProfile(profile); err != nil {
		return domain.Profile{}, err
	}
	profile.ID = uuid.New()
	return s.repo.Create(ctx, profile)
}

func (s *Service) Update(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	if err := s.validateProfile(profile); err != nil {
		return domain.Profile{}, err
	}
	updated, err := s.repo.Update(ctx, profile)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Profile{}, apperr.NotFound("agent profile not found").WithOp("agents.update")
		}
		return domain.Profile{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("agent profile not found").WithOp("agents.delete")
		}
		return err
	}
	return nil
}

// TestPersona runs the sample input through the profile's persona.
func (s *Service) TestPersona(ctx context.Context, id uuid.UUID, input string) (string, error) {
	if s.tester == nil {
		return "", apperr.Configuration("AI is not configured").WithOp("agents.test")
	}
	if input == "" {
		return "", apperr.Validation("a test input is required").WithOp("agents.test")
	}

	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	reply, err := s.tester.Test(ctx, profile, input)
	if err != nil {
		return "", apperr.Gateway("persona preview failed", err).WithOp("agents.test")
	}
	return reply, nil
}

func (s *Service) validateProfile(profile domain.Profile) error {
	if err := s.val.Var(profile.Name, "required"); err != nil {
		return apperr.Validation("a profile name is required")
	}
	if err := s.val.Var(profile.Objective, "required"); err != nil {
		return apperr.Validation("an objective is required")
	}
	if err := s.val.Var(profile.Authority, "omitempty,oneof=advisory assertive autonomous"); err != nil {
		return apperr.Validation("unknown authority level")
	}
	for _, r := range profile.Responsibilities {
		if err := s.val.Var(r.Weight, "gte=0,lte=100"); err != nil {
			return apperr.Validation("responsibility weights must be between 0 and 100")
		}
	}
	for _, knob := range []int{profile.Knobs.Creativity, profile.Knobs.Verbosity} {
		if err := s.val.Var(knob, "gte=0,lte=100"); err != nil {
			return apperr.Validation("behavior knobs must be between 0 and 100")
		}
	}
	return nil
}
