package models

import "time"

// PlatformCredential is a per-user, per-platform API credential pair stored
// in the database. ClientSecret is AES-GCM encrypted at rest when an
// encryption key is configured; otherwise it is stored as provided.
type PlatformCredential struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Platform     string    `db:"platform" json:"platform"`
	ClientID     string    `db:"client_id" json:"client_id"`
	ClientSecret string    `db:"client_secret" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
