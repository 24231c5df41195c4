package service

import (
	"context"
	"testing"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/pkg/utils"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

func storedCredential(t *testing.T, secret string, encrypt bool) *fakeCredentialRepo {
	t.Helper()

	if encrypt {
		encrypted, err := utils.Encrypt([]byte(secret), []byte(testEncryptionKey))
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		secret = encrypted
	}

	repo := &fakeCredentialRepo{}
	repo.Upsert(context.Background(), &models.PlatformCredential{
		UserID:       1,
		Platform:     "instagram",
		ClientID:     "user-client",
		ClientSecret: secret,
	})
	return repo
}

func TestCredentialResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured resolves to empty, not an error", func(t *testing.T) {
		resolver := NewCredentialResolver(config.Config{}, &fakeCredentialRepo{})

		creds := resolver.Resolve(ctx, 1, "instagram")
		if !creds.Empty() {
			t.Errorf("Resolve() = %+v, want empty credentials", creds)
		}
	})

	t.Run("falls back to process defaults", func(t *testing.T) {
		cfg := config.Config{
			Instagram: config.PlatformDefaults{ClientID: "env-client", ClientSecret: "env-secret"},
		}
		resolver := NewCredentialResolver(cfg, &fakeCredentialRepo{})

		creds := resolver.Resolve(ctx, 1, "instagram")
		if creds.ClientID != "env-client" || creds.ClientSecret != "env-secret" {
			t.Errorf("Resolve() = %+v, want the process defaults", creds)
		}
	})

	t.Run("stored credential wins over defaults", func(t *testing.T) {
		cfg := config.Config{
			Instagram:     config.PlatformDefaults{ClientID: "env-client", ClientSecret: "env-secret"},
			EncryptionKey: testEncryptionKey,
		}
		resolver := NewCredentialResolver(cfg, storedCredential(t, "user-secret", true))

		creds := resolver.Resolve(ctx, 1, "instagram")
		if creds.ClientID != "user-client" || creds.ClientSecret != "user-secret" {
			t.Errorf("Resolve() = %+v, want the decrypted stored credential", creds)
		}
	})

	t.Run("no encryption key passes the stored secret through", func(t *testing.T) {
		resolver := NewCredentialResolver(config.Config{}, storedCredential(t, "raw-secret", false))

		creds := resolver.Resolve(ctx, 1, "instagram")
		if creds.ClientSecret != "raw-secret" {
			t.Errorf("ClientSecret = %q, want the stored value as-is", creds.ClientSecret)
		}
	})

	t.Run("undecryptable secret falls back to the stored value", func(t *testing.T) {
		cfg := config.Config{EncryptionKey: testEncryptionKey}
		resolver := NewCredentialResolver(cfg, storedCredential(t, "not-real-ciphertext", false))

		creds := resolver.Resolve(ctx, 1, "instagram")
		if creds.ClientSecret != "not-real-ciphertext" {
			t.Errorf("ClientSecret = %q, want the raw stored value", creds.ClientSecret)
		}
	})

	t.Run("lookup failure degrades to defaults", func(t *testing.T) {
		cfg := config.Config{
			Instagram: config.PlatformDefaults{ClientID: "env-client", ClientSecret: "env-secret"},
		}
		resolver := NewCredentialResolver(cfg, &fakeCredentialRepo{err: errTestBoom})

		creds := resolver.Resolve(ctx, 1, "instagram")
		if creds.ClientID != "env-client" {
			t.Errorf("Resolve() = %+v, want the process defaults", creds)
		}
	})

	t.Run("unknown platform resolves empty", func(t *testing.T) {
		cfg := config.Config{
			Instagram: config.PlatformDefaults{ClientID: "env-client", ClientSecret: "env-secret"},
		}
		resolver := NewCredentialResolver(cfg, &fakeCredentialRepo{})

		creds := resolver.Resolve(ctx, 1, "myspace")
		if !creds.Empty() {
			t.Errorf("Resolve() = %+v, want empty credentials", creds)
		}
	})
}
