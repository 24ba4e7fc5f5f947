package models

import (
	"encoding/json"
	"time"
)

// LoginRequest carries credentials for login and refresh
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ArticleInput is the client payload for creating or updating an
// article. is_active is deliberately absent: clients can never set it.
type ArticleInput struct {
	Title   string          `json:"title"`
	Body    json.RawMessage `json:"json_body"`
	PubDate *time.Time      `json:"pub_date,omitempty"`
}

// ActivationRequest is the admin payload for toggling visibility. The
// pointer distinguishes an explicit false from an absent field.
type ActivationRequest struct {
	IsActive *bool `json:"is_active"`
}
