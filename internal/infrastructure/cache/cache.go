// Package cache implements the local snapshot cache: best-effort,
// eventually-consistent scratch storage for the rating collection and
// the per-call completion flags. Adapters never surface errors; absent
// or corrupt slots degrade to empty values and write failures are
// logged and swallowed. The cache must never be the sole durable copy
// relied upon for correctness.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/callreview-team/call-review/internal/domain/entities"
)

// Store is the snapshot cache contract the rating store depends on.
type Store interface {
	LoadRatings() entities.RatingCollection
	SaveRatings(entities.RatingCollection)
	LoadFlags() map[string]bool
	SaveFlags(map[string]bool)
}

// The ratings slot wire shape is callId -> turnPosition -> flat field
// map ({metricKey: number, ..., idealResponseKey: string}), matching
// what other store clients expect to find in the slot.
type wireCollection map[string]map[string]map[string]interface{}

// encodeRatings serializes the collection into the slot wire shape.
func encodeRatings(collection entities.RatingCollection, set entities.MetricSet) ([]byte, error) {
	wire := make(wireCollection, len(collection))
	for callID, turns := range collection {
		entry := make(map[string]map[string]interface{}, len(turns))
		for turn, rating := range turns {
			fields := make(map[string]interface{}, len(set.Metrics)+1)
			for _, spec := range set.Metrics {
				fields[spec.Key] = rating.Metrics[spec.Key]
			}
			fields[set.TextKey] = rating.IdealResponse
			entry[strconv.Itoa(turn)] = fields
		}
		wire[callID] = entry
	}
	return json.Marshal(wire)
}

// decodeRatings parses a slot payload back into a typed collection.
// Unknown field keys are dropped, metric values are clamped into range
// and malformed turn keys are skipped; a payload that is not a
// well-formed mapping is an error the caller degrades on.
func decodeRatings(data []byte, set entities.MetricSet) (entities.RatingCollection, error) {
	var wire wireCollection
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse ratings slot: %w", err)
	}
	collection := make(entities.RatingCollection, len(wire))
	for callID, turns := range wire {
		if callID == "" {
			continue
		}
		for turnKey, fields := range turns {
			turn, err := strconv.Atoi(turnKey)
			if err != nil || turn < 0 {
				continue
			}
			rating := set.Empty()
			for key, raw := range fields {
				if key == set.TextKey {
					if text, ok := raw.(string); ok {
						rating.IdealResponse = text
					}
					continue
				}
				if _, ok := set.Spec(key); !ok {
					continue
				}
				if n, ok := raw.(float64); ok {
					rating.Metrics[key] = set.Clamp(key, int(n))
				}
			}
			collection.Set(callID, turn, rating)
		}
	}
	return collection, nil
}

func encodeFlags(flags map[string]bool) ([]byte, error) {
	return json.Marshal(flags)
}

func decodeFlags(data []byte) (map[string]bool, error) {
	var flags map[string]bool
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("parse flags slot: %w", err)
	}
	if flags == nil {
		flags = make(map[string]bool)
	}
	return flags, nil
}
