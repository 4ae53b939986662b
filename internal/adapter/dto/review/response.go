package review

import (
	"github.com/callreview-team/call-review/internal/domain/entities"
)

// CallSummary is one row of the call list view.
type CallSummary struct {
	CallID     string `json:"callId"`
	Turns      int    `json:"turns"`
	RatedTurns int    `json:"rated_turns"`
	Complete   bool   `json:"complete"`
}

// CallDetail is a full call with the reviewer's current ratings.
type CallDetail struct {
	CallID   string                  `json:"callId"`
	Dialogue []entities.Turn         `json:"dialogue"`
	Ratings  map[int]entities.Rating `json:"ratings"`
	Complete bool                    `json:"complete"`
}

// RatingResponse is the current rating for one (call, turn).
type RatingResponse struct {
	CallID string          `json:"callId"`
	Turn   int             `json:"turn"`
	Rating entities.Rating `json:"rating"`
}

// FlagResponse reports a call's completion flag after a toggle.
type FlagResponse struct {
	CallID   string `json:"callId"`
	Complete bool   `json:"complete"`
}

// UploadResponse describes an export artifact pushed to object storage.
type UploadResponse struct {
	Object string `json:"object"`
	URL    string `json:"url,omitempty"`
}
