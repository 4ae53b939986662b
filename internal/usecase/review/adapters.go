package review

import (
	"context"

	"github.com/callreview-team/call-review/internal/domain/entities"
)

// SnapshotCache is the local persistent cache the store snapshots into.
// Implementations never surface errors: reads degrade to empty values
// and write failures are logged and swallowed.
type SnapshotCache interface {
	LoadRatings() entities.RatingCollection
	SaveRatings(entities.RatingCollection)
	LoadFlags() map[string]bool
	SaveFlags(map[string]bool)
}

// RemoteRecord is one reviewer row from the shared store, already
// coerced into the typed rating model by the adapter. Coercion types
// the row but does not range-clamp it: the reconciler decides per field
// whether a remote value carries information.
type RemoteRecord struct {
	CallID    string
	TurnIndex int
	Rating    entities.Rating
}

// RemoteStore is the shared multi-reviewer rating store. Fetch failures
// are explicit signals, not crashes; the store degrades to local-only
// operation when the remote is unavailable.
type RemoteStore interface {
	FetchByReviewer(ctx context.Context, reviewerID string) ([]RemoteRecord, error)
	Upsert(ctx context.Context, reviewerID, callID string, turnIndex int, r entities.Rating) error
}
