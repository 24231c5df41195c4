// Package platform holds the seam to per-platform publishing clients. It
// defines the contract the fan-out and account-linking code program against
// plus the shared OAuth2 plumbing, and ships the Instagram connector;
// connectors for further platforms register against the same contract.
package platform

import (
	"context"
	"errors"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

// Profile is the minimal identity a connector reports after a code exchange.
type Profile struct {
	PlatformUserID string
	Name           string
	Username       string
	PictureURL     string
}

// Connector performs the actual network calls against one platform. The
// OAuth code-for-token exchange itself is shared plumbing (see oauth.go);
// connectors only cover the calls whose shape differs per platform.
type Connector interface {
	// Publish delivers the post content through the given account and
	// returns the platform-side post identifier.
	Publish(ctx context.Context, account *models.SocialAccount, post *models.Post) (string, error)

	// Profile reports the identity a freshly exchanged token belongs to.
	Profile(ctx context.Context, token *OAuthToken) (*Profile, error)
}

var ErrUnknownPlatform = errors.New("no connector registered for platform")

// Registry maps a platform name to its connector. Connectors are registered
// at process start; lookups at publish time.
type Registry struct {
	connectors map[string]Connector
}

func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

func (r *Registry) Register(platform string, c Connector) {
	r.connectors[platform] = c
}

func (r *Registry) Lookup(platform string) (Connector, error) {
	c, ok := r.connectors[platform]
	if !ok {
		return nil, ErrUnknownPlatform
	}
	return c, nil
}
