package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/platform"
)

func connectConfig() config.Config {
	return config.Config{
		Instagram: config.PlatformDefaults{
			ClientID:     "ig-client",
			ClientSecret: "ig-secret",
			RedirectURI:  "https://app.example.com/auth/instagram/callback",
		},
	}
}

func TestConnectAuthURL(t *testing.T) {
	svc := NewConnectService(connectConfig(), newFakeAccountRepo(), platform.NewRegistry())

	t.Run("carries client, redirect and state", func(t *testing.T) {
		raw := svc.AuthURL(context.Background(), "instagram", "state-token")
		if raw == "" {
			t.Fatal("AuthURL() returned empty")
		}

		parsed, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("auth URL does not parse: %v", err)
		}
		query := parsed.Query()
		if query.Get("client_id") != "ig-client" {
			t.Errorf("client_id = %q", query.Get("client_id"))
		}
		if query.Get("redirect_uri") != "https://app.example.com/auth/instagram/callback" {
			t.Errorf("redirect_uri = %q", query.Get("redirect_uri"))
		}
		if query.Get("state") != "state-token" {
			t.Errorf("state = %q", query.Get("state"))
		}
		if !strings.Contains(query.Get("scope"), "instagram_business_content_publish") {
			t.Errorf("scope = %q, want the publish scope", query.Get("scope"))
		}
	})

	t.Run("unknown platform yields empty", func(t *testing.T) {
		if raw := svc.AuthURL(context.Background(), "myspace", "s"); raw != "" {
			t.Errorf("AuthURL() = %q, want empty", raw)
		}
	})
}

func TestConnectCallback(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	newFixture := func(connector *fakeConnector) (*connectService, *fakeAccountRepo) {
		ar := newFakeAccountRepo()
		registry := platform.NewRegistry()
		if connector != nil {
			registry.Register("instagram", connector)
		}

		svc := NewConnectService(connectConfig(), ar, registry).(*connectService)
		svc.exchange = func(ctx context.Context, conf *oauth2.Config, code string) (*platform.OAuthToken, error) {
			if code != "good-code" {
				return nil, errors.New("invalid code")
			}
			return &platform.OAuthToken{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresAt:    expiry,
			}, nil
		}
		return svc, ar
	}

	t.Run("stores the connected account", func(t *testing.T) {
		connector := &fakeConnector{profile: &platform.Profile{
			PlatformUserID: "ig-777",
			Name:           "Studio",
			PictureURL:     "https://cdn.example.com/p.jpg",
		}}
		svc, ar := newFixture(connector)

		if err := svc.Callback(ctx, "instagram", "good-code", 42); err != nil {
			t.Fatalf("Callback() error = %v", err)
		}

		accounts, _ := ar.ListByUserID(ctx, 42)
		if len(accounts) != 1 {
			t.Fatalf("accounts = %d, want 1", len(accounts))
		}
		got := accounts[0]
		if got.Platform != "instagram" || got.PlatformUserID != "ig-777" || got.AccountName != "Studio" {
			t.Errorf("account identity = %s/%s/%s", got.Platform, got.PlatformUserID, got.AccountName)
		}
		if got.AccessToken != "access" || got.RefreshToken != "refresh" {
			t.Error("tokens not stored")
		}
		if !got.TokenExpiresAt.Valid || !got.TokenExpiresAt.Time.Equal(expiry) {
			t.Errorf("token_expires_at = %v, want %v", got.TokenExpiresAt, expiry)
		}
		if !got.IsActive {
			t.Error("account not active")
		}
	})

	t.Run("failed exchange stores nothing", func(t *testing.T) {
		svc, ar := newFixture(&fakeConnector{profile: &platform.Profile{PlatformUserID: "x"}})

		if err := svc.Callback(ctx, "instagram", "bad-code", 42); err == nil {
			t.Fatal("Callback() expected error")
		}
		if accounts, _ := ar.ListByUserID(ctx, 42); len(accounts) != 0 {
			t.Errorf("accounts = %d, want 0", len(accounts))
		}
	})

	t.Run("failed profile fetch stores nothing", func(t *testing.T) {
		svc, ar := newFixture(&fakeConnector{profileErr: errTestBoom})

		if err := svc.Callback(ctx, "instagram", "good-code", 42); err == nil {
			t.Fatal("Callback() expected error")
		}
		if accounts, _ := ar.ListByUserID(ctx, 42); len(accounts) != 0 {
			t.Errorf("accounts = %d, want 0", len(accounts))
		}
	})

	t.Run("unregistered platform connector", func(t *testing.T) {
		svc, _ := newFixture(nil)

		err := svc.Callback(ctx, "instagram", "good-code", 42)
		if !errors.Is(err, platform.ErrUnknownPlatform) {
			t.Errorf("Callback() error = %v, want ErrUnknownPlatform", err)
		}
	})
}
