package models

import (
	"database/sql"
	"time"
)

// PostTarget is one delivery attempt of a post to a connected social account.
// A post with N chosen accounts has exactly N targets, created in the same
// transaction as the post itself.
type PostTarget struct {
	ID              int64          `db:"id" json:"id"`
	PostID          int64          `db:"post_id" json:"post_id"`
	SocialAccountID int64          `db:"social_account_id" json:"social_account_id"`
	Status          string         `db:"status" json:"status"`
	PlatformPostID  sql.NullString `db:"platform_post_id" json:"platform_post_id"`
	PublishedAt     sql.NullTime   `db:"published_at" json:"published_at"`
	FailureReason   string         `db:"failure_reason" json:"failure_reason"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	TargetStatusScheduled  = "scheduled"
	TargetStatusPublishing = "publishing"
	TargetStatusPublished  = "published"
	TargetStatusFailed     = "failed"
)

// Failure reasons recorded on a target when a delivery attempt does not
// reach the platform or is rejected by it.
const (
	FailureCredentialUnavailable = "credential_unavailable"
	FailureRateLimited           = "rate_limited"
	FailureTimeout               = "timeout"
	FailureConnector             = "connector_failure"
)
