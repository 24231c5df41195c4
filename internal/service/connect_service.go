package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/platform"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

// ConnectService links social accounts to users: it builds the consent
// redirect and turns the callback code into a stored account. Connecting
// the same platform identity twice updates the existing row.
type ConnectService interface {
	AuthURL(ctx context.Context, platformName, state string) string
	Callback(ctx context.Context, platformName, code string, userID int64) error
}

type connectService struct {
	cfg        config.Config
	sa         repository.SocialAccountRepository
	connectors *platform.Registry

	exchange func(ctx context.Context, conf *oauth2.Config, code string) (*platform.OAuthToken, error)
}

func NewConnectService(cfg config.Config, sa repository.SocialAccountRepository, connectors *platform.Registry) ConnectService {
	return &connectService{
		cfg:        cfg,
		sa:         sa,
		connectors: connectors,
		exchange:   platform.Exchange,
	}
}

func (s *connectService) oauthConfig(platformName string) *oauth2.Config {
	return platform.OAuthConfig(platformName, s.cfg.PlatformDefaultsFor(platformName), platform.Scopes(platformName))
}

func (s *connectService) AuthURL(ctx context.Context, platformName, state string) string {
	conf := s.oauthConfig(platformName)
	if conf == nil {
		return ""
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *connectService) Callback(ctx context.Context, platformName, code string, userID int64) error {
	conf := s.oauthConfig(platformName)
	if conf == nil {
		return fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, platformName)
	}

	connector, err := s.connectors.Lookup(platformName)
	if err != nil {
		return err
	}

	token, err := s.exchange(ctx, conf, code)
	if err != nil {
		slog.Info("code exchange failed", "platform", platformName, "error", err.Error())
		return err
	}

	profile, err := connector.Profile(ctx, token)
	if err != nil {
		slog.Info("profile fetch failed", "platform", platformName, "error", err.Error())
		return err
	}

	account := models.SocialAccount{
		UserID:         userID,
		Platform:       platformName,
		PlatformUserID: profile.PlatformUserID,
		AccountName:    profile.Name,
		AccountType:    models.AccountTypeProfile,
		ProfilePicture: profile.PictureURL,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		IsActive:       true,
	}
	if !token.ExpiresAt.IsZero() {
		account.TokenExpiresAt = sql.NullTime{Time: token.ExpiresAt, Valid: true}
	}

	if _, err := s.sa.Create(ctx, nil, &account); err != nil {
		return fmt.Errorf("error saving social account: %w", err)
	}
	return nil
}
