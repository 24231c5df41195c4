package models

import (
	"database/sql"
	"time"
)

type Post struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"user_id"`
	ContentType    string        `db:"content_type" json:"content_type"`
	Content        string        `db:"content" json:"content"`
	Title          string        `db:"title" json:"title"`
	CategoryID     sql.NullInt64 `db:"category_id" json:"category_id"`
	Status         string        `db:"status" json:"status"`
	ScheduledAt    sql.NullTime  `db:"scheduled_at" json:"scheduled_at"`
	PublishedAt    sql.NullTime  `db:"published_at" json:"published_at"`
	IsEvergreen    bool          `db:"is_evergreen" json:"is_evergreen"`
	LastRecycledAt sql.NullTime  `db:"last_recycled_at" json:"last_recycled_at"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	FileName     string    `db:"file_name"`
	FileType     string    `db:"file_type"`
	FileSize     int64     `db:"file_size"`
	FileURL      string    `db:"file_url"`
	ThumbnailURL string    `db:"thumbnail_url"`
	CreatedAt    time.Time `db:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id"`
	AssetID      int64     `db:"asset_id"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
}

const (
	PostStatusDraft         = "draft"
	PostStatusPendingReview = "pending_review"
	PostStatusScheduled     = "scheduled"
	PostStatusPublishing    = "publishing"
	PostStatusPublished     = "published"
	PostStatusFailed        = "failed"
)

const (
	ContentTypeText  = "text"
	ContentTypeLink  = "link"
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
)
