package model

import "time"

// APIKey represents an API key for authenticating against the workflow API.
// Only the sha256 hash of the raw key is stored; the raw key is shown once
// at creation.
type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix,omitempty"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}
