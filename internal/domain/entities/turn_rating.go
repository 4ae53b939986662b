package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TurnRating is the stored shape of one reviewer's judgment of one turn
// in the shared rating store. Rows are keyed by the composite
// (call_id, turn_index, reviewer_id) so repeated writes overwrite
// rather than duplicate.
type TurnRating struct {
	ID            uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallID        string                             `json:"call_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_turn_ratings_key,priority:1"`
	TurnIndex     int                                `json:"turn_index" gorm:"not null;uniqueIndex:idx_turn_ratings_key,priority:2"`
	ReviewerID    string                             `json:"reviewer_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_turn_ratings_key,priority:3"`
	Metrics       datatypes.JSONType[map[string]int] `json:"metrics" gorm:"type:jsonb"`
	IdealResponse string                             `json:"ideal_response" gorm:"type:text"`
	CreatedAt     time.Time                          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time                          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TurnRating) TableName() string {
	return "turn_ratings"
}

// NewTurnRating builds a row for upsert from the typed rating.
func NewTurnRating(reviewerID, callID string, turnIndex int, r Rating) TurnRating {
	metrics := make(map[string]int, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
	}
	return TurnRating{
		ID:            uuid.New(),
		CallID:        callID,
		TurnIndex:     turnIndex,
		ReviewerID:    reviewerID,
		Metrics:       datatypes.NewJSONType(metrics),
		IdealResponse: r.IdealResponse,
	}
}
