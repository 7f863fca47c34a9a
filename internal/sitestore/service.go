package sitestore

import (
	"context"
	"errors"
	"time"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// LeadStore is the slice of the leads repository used to verify a page
// exists before handing out links.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// Linker is the storage surface the service needs. *Archiver satisfies it.
type Linker interface {
	ShareLink(ctx context.Context, leadID uuid.UUID, pageName string) (string, time.Time, error)
}

// ShareLink is a presigned URL for one generated page.
type ShareLink struct {
	URL       string    `json:"url"`
	Page      string    `json:"page"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	leads  LeadStore
	linker Linker
	log    *logger.Logger
}

func NewService(leads LeadStore, linker Linker, log *logger.Logger) *Service {
	return &Service{leads: leads, linker: linker, log: log}
}

// Share returns a presigned link for one of the lead's generated pages.
func (s *Service) Share(ctx context.Context, leadID uuid.UUID, pageName string) (ShareLink, error) {
	const op = "sitestore.share"

	if s.linker == nil {
		return ShareLink{}, apperr.Configuration("site storage is not configured").WithOp(op)
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ShareLink{}, apperr.NotFound("lead not found").WithOp(op)
		}
		return ShareLink{}, err
	}

	if pageName == "" {
		pageName = "home"
	}
	if _, ok := lead.SitePages[pageName]; !ok {
		return ShareLink{}, apperr.NotFound("page not found").WithOp(op)
	}

	url, expiresAt, err := s.linker.ShareLink(ctx, leadID, pageName)
	if err != nil {
		s.log.Error("share link failed", "lead_id", leadID.String(), "page", pageName, "error", err)
		return ShareLink{}, apperr.Gateway("failed to generate share link", err).WithOp(op)
	}

	return ShareLink{URL: url, Page: pageName, ExpiresAt: expiresAt}, nil
}

// ShareQR returns a PNG QR code encoding the presigned link, sized for
// printing on a leave-behind card.
func (s *Service) ShareQR(ctx context.Context, leadID uuid.UUID, pageName string) ([]byte, error) {
	link, err := s.Share(ctx, leadID, pageName)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(link.URL, qrcode.Medium, 512)
	if err != nil {
		return nil, apperr.Internal("failed to encode QR code").WithOp("sitestore.share_qr")
	}
	return png, nil
}
