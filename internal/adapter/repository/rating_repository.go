package repository

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/usecase/review"
)

const fetchMaxRetries = 3

// RatingRepository is the remote sync adapter over the shared
// turn_ratings table. It owns coercing loosely-shaped rows into the
// typed rating model so merge logic never shape-guesses; it does not
// range-clamp values, because the reconciler must be able to see and
// reject out-of-range data.
type RatingRepository struct {
	db  *gorm.DB
	set entities.MetricSet
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB, set entities.MetricSet) *RatingRepository {
	return &RatingRepository{db: db, set: set}
}

var _ review.RemoteStore = (*RatingRepository)(nil)

// FetchByReviewer bulk-reads the reviewer's rows, retrying transient
// failures briefly before reporting an explicit error. Callers proceed
// with local state on failure; remote is an enhancement, not a
// precondition.
func (r *RatingRepository) FetchByReviewer(ctx context.Context, reviewerID string) ([]review.RemoteRecord, error) {
	var rows []entities.TurnRating
	operation := func() error {
		rows = rows[:0]
		return r.db.WithContext(ctx).
			Where("reviewer_id = ?", reviewerID).
			Order("call_id, turn_index").
			Find(&rows).Error
	}
	policy := backoff.WithMaxRetries(newFetchBackoff(), fetchMaxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	records := make([]review.RemoteRecord, 0, len(rows))
	for _, row := range rows {
		if record, ok := recordFromRow(row, r.set); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// Upsert writes one full record keyed by (call, turn, reviewer);
// a duplicate key overwrites rather than duplicates.
func (r *RatingRepository) Upsert(ctx context.Context, reviewerID, callID string, turnIndex int, rating entities.Rating) error {
	row := entities.NewTurnRating(reviewerID, callID, turnIndex, rating)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "call_id"},
				{Name: "turn_index"},
				{Name: "reviewer_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"metrics", "ideal_response", "updated_at"}),
		}).
		Create(&row).Error
}

// recordFromRow types a stored row into the reconciler's record shape.
// Rows without a usable key are dropped; metric keys outside the
// configured set are ignored.
func recordFromRow(row entities.TurnRating, set entities.MetricSet) (review.RemoteRecord, bool) {
	if row.CallID == "" || row.TurnIndex < 0 {
		return review.RemoteRecord{}, false
	}
	rating := set.Empty()
	stored := row.Metrics.Data()
	for _, spec := range set.Metrics {
		if value, ok := stored[spec.Key]; ok {
			rating.Metrics[spec.Key] = value
		}
	}
	rating.IdealResponse = row.IdealResponse
	return review.RemoteRecord{
		CallID:    row.CallID,
		TurnIndex: row.TurnIndex,
		Rating:    rating,
	}, true
}

func newFetchBackoff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	return policy
}
