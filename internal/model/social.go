package model

import "time"

// Network is a social platform listings are announced on.
type Network string

const (
	NetworkFacebook  Network = "facebook"
	NetworkInstagram Network = "instagram"
)

// SocialPostStatus records the outcome of one announcement attempt.
type SocialPostStatus string

const (
	SocialPosted SocialPostStatus = "posted"
	SocialFailed SocialPostStatus = "failed"
)

// SocialPost is the audit record of announcing a product on a network.
type SocialPost struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	Network    Network          `json:"network"`
	ExternalID string           `json:"external_id,omitempty"`
	Status     SocialPostStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
