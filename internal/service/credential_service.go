package service

import (
	"context"
	"log/slog"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
	"github.com/renefichtmueller/ctxpost-sub002/pkg/utils"
)

// Credentials is the per-user, per-platform API credential pair handed to
// connectors. A zero value means "not configured"; downstream callers must
// treat emptiness as a recoverable condition, not an error.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

func (c Credentials) Empty() bool {
	return c.ClientID == "" && c.ClientSecret == ""
}

// CredentialResolver produces the credentials for calling a platform's API
// on behalf of a user. Resolution order: per-user stored configuration
// (decrypted when an encryption key is configured), then the process-wide
// environment default. It never fails outright.
type CredentialResolver interface {
	Resolve(ctx context.Context, userID int64, platform string) Credentials
}

type credentialResolver struct {
	cfg config.Config
	cr  repository.PlatformCredentialRepository
}

func NewCredentialResolver(cfg config.Config, cr repository.PlatformCredentialRepository) CredentialResolver {
	return &credentialResolver{cfg: cfg, cr: cr}
}

func (s *credentialResolver) Resolve(ctx context.Context, userID int64, platform string) Credentials {
	stored, err := s.cr.GetByUserAndPlatform(ctx, userID, platform)
	if err != nil {
		slog.Info("credential lookup failed", "user_id", userID, "platform", platform, "error", err.Error())
	}

	if stored != nil {
		return Credentials{
			ClientID:     stored.ClientID,
			ClientSecret: s.resolveSecret(stored.ClientSecret, platform),
		}
	}

	defaults := s.cfg.PlatformDefaultsFor(platform)
	return Credentials{
		ClientID:     defaults.ClientID,
		ClientSecret: defaults.ClientSecret,
	}
}

// resolveSecret decrypts a stored secret, falling back to the raw stored
// value when decryption is impossible. The two fallback causes are logged
// distinctly: a missing key is a deployment choice, a failed decrypt points
// at key rotation or corrupted data.
func (s *credentialResolver) resolveSecret(stored, platform string) string {
	if s.cfg.EncryptionKey == "" {
		slog.Info("no encryption key configured, using stored credential as-is", "platform", platform)
		return stored
	}

	plaintext, err := utils.Decrypt(stored, []byte(s.cfg.EncryptionKey))
	if err != nil {
		slog.Warn("credential decrypt failed, falling back to stored value", "platform", platform, "error", err.Error())
		return stored
	}
	return plaintext
}
