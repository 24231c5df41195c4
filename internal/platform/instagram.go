package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

// InstagramConnector talks to the Instagram Graph API: profile lookup after
// a code exchange and the two-step container publish. BaseURL and Client are
// exported so tests can point it at a local server.
type InstagramConnector struct {
	BaseURL string
	Client  *http.Client
}

func NewInstagramConnector() *InstagramConnector {
	return &InstagramConnector{
		BaseURL: "https://graph.instagram.com",
		Client:  http.DefaultClient,
	}
}

func (c *InstagramConnector) Profile(ctx context.Context, token *OAuthToken) (*Profile, error) {
	reqURL := fmt.Sprintf(
		"%s/me?fields=id,username,name,profile_picture_url&access_token=%s",
		c.BaseURL, url.QueryEscape(token.AccessToken),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var info struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		Name           string `json:"name"`
		ProfilePicture string `json:"profile_picture_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("no user id returned from Instagram")
	}

	return &Profile{
		PlatformUserID: info.ID,
		Name:           info.Name,
		Username:       info.Username,
		PictureURL:     info.ProfilePicture,
	}, nil
}

// Publish creates a media container for the post and publishes it, returning
// the platform-side media ID.
func (c *InstagramConnector) Publish(ctx context.Context, account *models.SocialAccount, post *models.Post) (string, error) {
	containerID, err := c.postForID(ctx, fmt.Sprintf("%s/v21.0/%s/media", c.BaseURL, account.PlatformUserID), map[string]any{
		"caption":      post.Content,
		"access_token": account.AccessToken,
	})
	if err != nil {
		return "", err
	}
	if containerID == "" {
		return "", errors.New("no container id returned from Instagram")
	}

	mediaID, err := c.postForID(ctx, fmt.Sprintf("%s/v21.0/%s/media_publish", c.BaseURL, account.PlatformUserID), map[string]any{
		"creation_id":  containerID,
		"access_token": account.AccessToken,
	})
	if err != nil {
		return "", err
	}
	if mediaID == "" {
		return "", errors.New("no media id returned from Instagram")
	}
	return mediaID, nil
}

func (c *InstagramConnector) postForID(ctx context.Context, reqURL string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	return result.ID, nil
}
