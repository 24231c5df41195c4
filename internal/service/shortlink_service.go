package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

const shortCodeLength = 8

type ShortLinkService interface {
	Create(ctx context.Context, userID int64, originalURL, utmSource, utmMedium, utmCampaign string) (*models.ShortLink, error)

	// Resolve maps a short code to its destination URL with tracking
	// parameters appended, counting the click.
	Resolve(ctx context.Context, code string) (string, error)
}

type shortLinkService struct {
	lr repository.ShortLinkRepository
}

func NewShortLinkService(lr repository.ShortLinkRepository) ShortLinkService {
	return &shortLinkService{lr: lr}
}

func (s *shortLinkService) Create(ctx context.Context, userID int64, originalURL, utmSource, utmMedium, utmCampaign string) (*models.ShortLink, error) {
	if err := validateDestination(originalURL); err != nil {
		return nil, err
	}

	code, err := gonanoid.New(shortCodeLength)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	link := models.ShortLink{
		UserID:      userID,
		ShortCode:   code,
		OriginalURL: originalURL,
		UTMSource:   nullString(utmSource),
		UTMMedium:   nullString(utmMedium),
		UTMCampaign: nullString(utmCampaign),
	}

	id, err := s.lr.Create(ctx, &link)
	if err != nil {
		return nil, err
	}
	link.ID = id

	return &link, nil
}

func (s *shortLinkService) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.lr.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", ErrNotFound
	}

	destination, err := buildDestination(link)
	if err != nil {
		return "", err
	}

	if err := s.lr.IncrementClicks(ctx, link.ID); err != nil {
		// The redirect still goes out; a lost click is not worth a 500.
		slog.Info("click increment failed", "short_code", code, "error", err.Error())
	}

	return destination, nil
}

// validateDestination rejects any scheme other than http/https so a stored
// javascript: (or similar) URL can never be served as a redirect.
func validateDestination(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: got %q", ErrInvalidProtocol, parsed.Scheme)
	}
	return nil
}

func buildDestination(link *models.ShortLink) (string, error) {
	if err := validateDestination(link.OriginalURL); err != nil {
		return "", err
	}

	parsed, err := url.Parse(link.OriginalURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	query := parsed.Query()
	if link.UTMSource.Valid {
		query.Set("utm_source", link.UTMSource.String)
	}
	if link.UTMMedium.Valid {
		query.Set("utm_medium", link.UTMMedium.String)
	}
	if link.UTMCampaign.Valid {
		query.Set("utm_campaign", link.UTMCampaign.String)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
