package transfer

import "github.com/golang-jwt/jwt/v5"

type PostCreation struct {
	Content          string
	Title            string
	ContentType      string
	ScheduledTime    string
	SelectedAccounts string
}

type RescheduleRequest struct {
	PostID        int64  `json:"post_id"`
	ScheduledTime string `json:"scheduled_time"`
}

type EvergreenRequest struct {
	PostID    int64 `json:"post_id"`
	Evergreen bool  `json:"evergreen"`
}

type ShortLinkCreation struct {
	OriginalURL string `json:"original_url"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
}

type InsightRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
