package review

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/infrastructure/metrics"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
)

// Store owns the authoritative rating collection and the per-call
// completion flags; it is the single writer. Inbound snapshots from the
// cache and the remote store merge through it with a fixed precedence:
// a remote value wins over a cache value when it carries information,
// and a field edited locally in this session is never overwritten by
// either, regardless of arrival order.
type Store struct {
	mu      sync.Mutex
	ratings entities.RatingCollection
	flags   map[string]bool
	edited  map[editKey]struct{}

	set        entities.MetricSet
	reviewerID string
	cache      SnapshotCache
	remote     RemoteStore
	logger     *zap.Logger

	pending sync.WaitGroup
}

// editKey identifies one locally edited field for the session.
type editKey struct {
	callID string
	turn   int
	field  string
}

// NewStore creates an empty store. Initialize merges persisted state in
// afterwards; edits are accepted immediately, even before that.
func NewStore(set entities.MetricSet, reviewerID string, cache SnapshotCache, remote RemoteStore, logger *zap.Logger) *Store {
	return &Store{
		ratings:    make(entities.RatingCollection),
		flags:      make(map[string]bool),
		edited:     make(map[editKey]struct{}),
		set:        set,
		reviewerID: reviewerID,
		cache:      cache,
		remote:     remote,
		logger:     logger,
	}
}

// Initialize merges the cache snapshot and then the reviewer's remote
// rows into the collection. It is expected to run concurrently with
// user edits; the edit ledger keeps a slow fetch from stomping a fast
// edit. A remote failure is logged and the session continues on local
// state only.
func (s *Store) Initialize(ctx context.Context) {
	snapshot := s.cache.LoadRatings()
	flags := s.cache.LoadFlags()

	s.mu.Lock()
	for callID, turns := range snapshot {
		for turn, rating := range turns {
			s.mergeLocked(callID, turn, rating, false)
		}
	}
	for callID, flag := range flags {
		if _, toggled := s.edited[editKey{callID: callID, field: flagField}]; !toggled {
			s.flags[callID] = flag
		}
	}
	s.mu.Unlock()

	if s.remote == nil {
		s.logger.Info("remote rating store not configured, local-only session")
		return
	}

	rows, err := s.remote.FetchByReviewer(ctx, s.reviewerID)
	if err != nil {
		s.logger.Warn("remote ratings unavailable, continuing with local state",
			zap.String("reviewer_id", s.reviewerID),
			zap.Error(err),
		)
		metrics.Default.RemoteFetchFailures.Inc()
		return
	}

	s.mu.Lock()
	for _, row := range rows {
		s.mergeLocked(row.CallID, row.TurnIndex, row.Rating, true)
		metrics.Default.RemoteRowsMerged.Inc()
	}
	s.mu.Unlock()

	s.logger.Info("rating state initialized",
		zap.String("reviewer_id", s.reviewerID),
		zap.Int("remote_rows", len(rows)),
	)
}

// mergeLocked folds one inbound rating into the collection, field by
// field. Locally edited fields always keep their value. A remote metric
// wins only when it is a set in-range value; a remote text wins only
// when non-blank. Cache values fill any field not otherwise claimed.
func (s *Store) mergeLocked(callID string, turn int, incoming entities.Rating, fromRemote bool) {
	current, ok := s.ratings.Get(callID, turn)
	if !ok {
		current = s.set.Empty()
	}
	merged := current.Clone()

	for _, spec := range s.set.Metrics {
		if s.editedLocked(callID, turn, spec.Key) {
			continue
		}
		value, present := incoming.Metrics[spec.Key]
		if !present {
			continue
		}
		if fromRemote {
			if s.set.IsSetValue(spec.Key, value) {
				merged.Metrics[spec.Key] = value
			}
			continue
		}
		merged.Metrics[spec.Key] = s.set.Clamp(spec.Key, value)
	}

	if !s.editedLocked(callID, turn, s.set.TextKey) {
		if fromRemote {
			if incoming.IdealResponse != "" {
				merged.IdealResponse = incoming.IdealResponse
			}
		} else {
			merged.IdealResponse = incoming.IdealResponse
		}
	}

	s.ratings.Set(callID, turn, merged)
}

func (s *Store) editedLocked(callID string, turn int, field string) bool {
	_, ok := s.edited[editKey{callID: callID, turn: turn, field: field}]
	return ok
}

// GetRating returns a copy of the current rating for (callID, turn), or
// the empty rating if none exists. It never fails.
func (s *Store) GetRating(callID string, turn int) entities.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.ratings.Get(callID, turn); ok {
		return r.Clone()
	}
	return s.set.Empty()
}

// SetField applies one field edit: the update reads the store's current
// rating for the key, so interleaved edits to different fields of the
// same turn never lose each other. The in-memory mutation completes and
// the method returns before the cache save and remote upsert side
// effects run; their failures are logged, counted and otherwise
// ignored. The only error is an unknown field key.
func (s *Store) SetField(callID string, turn int, field string, value interface{}) error {
	if !s.set.HasField(field) {
		return uerrors.ErrUnknownField
	}

	s.mu.Lock()
	current, ok := s.ratings.Get(callID, turn)
	if !ok {
		current = s.set.Empty()
	}
	updated, err := s.set.Apply(current, field, value)
	if err != nil {
		s.mu.Unlock()
		return uerrors.ErrUnknownField
	}
	s.ratings.Set(callID, turn, updated)
	s.edited[editKey{callID: callID, turn: turn, field: field}] = struct{}{}
	snapshot := s.ratings.Clone()
	record := updated.Clone()
	s.mu.Unlock()

	metrics.Default.EditsApplied.Inc()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.cache.SaveRatings(snapshot)
	}()

	if s.remote != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			if err := s.remote.Upsert(context.Background(), s.reviewerID, callID, turn, record); err != nil {
				s.logger.Warn("rating upsert failed, edit kept locally",
					zap.String("call_id", callID),
					zap.Int("turn", turn),
					zap.String("field", field),
					zap.Error(err),
				)
				metrics.Default.RemoteUpsertFailures.Inc()
			}
		}()
	}

	return nil
}

// flagField marks completion-flag toggles in the edit ledger. Flags are
// keyed by call only, so the ledger entry uses turn 0 and this field name.
const flagField = "__complete"

// ToggleCallFlag flips the per-call completion flag and persists the
// flag mapping to the cache only. Returns the new value.
func (s *Store) ToggleCallFlag(callID string) bool {
	s.mu.Lock()
	s.flags[callID] = !s.flags[callID]
	value := s.flags[callID]
	s.edited[editKey{callID: callID, field: flagField}] = struct{}{}
	snapshot := make(map[string]bool, len(s.flags))
	for id, flag := range s.flags {
		snapshot[id] = flag
	}
	s.mu.Unlock()

	metrics.Default.FlagToggles.Inc()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.cache.SaveFlags(snapshot)
	}()

	return value
}

// CallFlag returns the completion flag for a call.
func (s *Store) CallFlag(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[callID]
}

// Flags returns a copy of the completion-flag mapping.
func (s *Store) Flags() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.flags))
	for id, flag := range s.flags {
		out[id] = flag
	}
	return out
}

// Snapshot returns a deep copy of the collection for export and other
// read-only consumers. No caller ever holds a live reference.
func (s *Store) Snapshot() entities.RatingCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings.Clone()
}

// MetricSet exposes the configured rating schema.
func (s *Store) MetricSet() entities.MetricSet {
	return s.set
}

// Flush waits for all dispatched side effects to settle. Used by
// graceful shutdown so the last cache snapshot lands on disk.
func (s *Store) Flush() {
	s.pending.Wait()
}
