package platform

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
)

// OAuthToken is the long-lived credential a connector hands back after a
// code exchange.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

var endpoints = map[string]oauth2.Endpoint{
	"instagram": {
		AuthURL:  "https://api.instagram.com/oauth/authorize",
		TokenURL: "https://api.instagram.com/oauth/access_token",
	},
	"tiktok": {
		AuthURL:  "https://www.tiktok.com/v2/auth/authorize/",
		TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
	},
	"youtube": {
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	},
}

var defaultScopes = map[string][]string{
	"instagram": {"instagram_business_basic", "instagram_business_content_publish"},
	"tiktok":    {"user.info.basic", "user.info.profile", "video.publish", "video.upload"},
	"youtube": {
		"https://www.googleapis.com/auth/userinfo.profile",
		"https://www.googleapis.com/auth/youtube.upload",
	},
}

// Scopes returns the publishing scopes requested when connecting an
// account on platform.
func Scopes(platform string) []string {
	return defaultScopes[platform]
}

// OAuthConfig builds the oauth2 client configuration for a platform from
// the supplied credentials. Returns nil for an unknown platform.
func OAuthConfig(platform string, defaults config.PlatformDefaults, scopes []string) *oauth2.Config {
	ep, ok := endpoints[platform]
	if !ok {
		return nil
	}
	return &oauth2.Config{
		ClientID:     defaults.ClientID,
		ClientSecret: defaults.ClientSecret,
		RedirectURL:  defaults.RedirectURI,
		Endpoint:     ep,
		Scopes:       scopes,
	}
}

// Exchange runs the authorization-code grant and converts the result to the
// connector token shape.
func Exchange(ctx context.Context, conf *oauth2.Config, code string) (*OAuthToken, error) {
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return &OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}
