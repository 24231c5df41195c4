package models

import (
	"database/sql"
	"time"
)

type SocialAccount struct {
	ID              int64         `db:"id" json:"id"`
	UserID          int64         `db:"user_id" json:"user_id"`
	Platform        string        `db:"platform" json:"platform"`
	PlatformUserID  string        `db:"platform_user_id" json:"platform_user_id"`
	AccountName     string        `db:"account_name" json:"account_name"`
	AccountType     string        `db:"account_type" json:"account_type"`
	ParentAccountID sql.NullInt64 `db:"parent_account_id" json:"parent_account_id"`
	ProfilePicture  string        `db:"profile_picture_url" json:"profile_picture"`
	AccessToken     string        `db:"access_token" json:"-"`
	RefreshToken    string        `db:"refresh_token" json:"-"`
	TokenExpiresAt  sql.NullTime  `db:"token_expires_at" json:"token_expires_at"`
	IsActive        bool          `db:"is_active" json:"is_active"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

const (
	AccountTypeProfile = "profile"
	AccountTypePage    = "page"
)
