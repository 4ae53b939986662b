package entities

import (
	"fmt"
	"strings"
)

// MetricSpec describes one named rating metric. Scale values are
// integers in [Min..Max] with Min (0) meaning unset.
type MetricSpec struct {
	Key string
	Min int
	Max int
}

// MetricSet is the configured rating schema: the enumerable list of
// metric fields plus the key of the free-text ideal-response field.
// Metrics are configuration, not structure; adding one must never
// require touching merge or export logic.
type MetricSet struct {
	Metrics []MetricSpec
	TextKey string
}

// NewMetricSet builds a schema from metric keys sharing a 0..max scale.
func NewMetricSet(keys []string, max int, textKey string) MetricSet {
	metrics := make([]MetricSpec, 0, len(keys))
	for _, key := range keys {
		metrics = append(metrics, MetricSpec{Key: key, Min: 0, Max: max})
	}
	return MetricSet{Metrics: metrics, TextKey: textKey}
}

// Spec looks up the spec for a metric key.
func (s MetricSet) Spec(key string) (MetricSpec, bool) {
	for _, spec := range s.Metrics {
		if spec.Key == key {
			return spec, true
		}
	}
	return MetricSpec{}, false
}

// HasField reports whether key names a metric or the ideal-response field.
func (s MetricSet) HasField(key string) bool {
	if key == s.TextKey {
		return true
	}
	_, ok := s.Spec(key)
	return ok
}

// Empty returns a Rating with every metric unset and empty text, the
// default when no record exists yet for a (call, turn).
func (s MetricSet) Empty() Rating {
	metrics := make(map[string]int, len(s.Metrics))
	for _, spec := range s.Metrics {
		metrics[spec.Key] = 0
	}
	return Rating{Metrics: metrics, IdealResponse: ""}
}

// Clamp forces a metric value into the spec's bounds. Out-of-range
// input is clamped to the nearest bound, never rejected.
func (s MetricSet) Clamp(key string, value int) int {
	spec, ok := s.Spec(key)
	if !ok {
		return value
	}
	if value < spec.Min {
		return spec.Min
	}
	if value > spec.Max {
		return spec.Max
	}
	return value
}

// IsSetValue reports whether value carries information for the metric:
// in range and not the unset marker. Values failing this test never win
// a merge.
func (s MetricSet) IsSetValue(key string, value int) bool {
	spec, ok := s.Spec(key)
	if !ok {
		return false
	}
	return value > spec.Min && value <= spec.Max
}

// Apply returns a copy of r with one field updated. Metric values are
// clamped into range; the ideal-response key replaces the text. The
// input rating is never mutated.
func (s MetricSet) Apply(r Rating, key string, value interface{}) (Rating, error) {
	updated := r.Clone()
	if key == s.TextKey {
		text, ok := value.(string)
		if !ok {
			return Rating{}, fmt.Errorf("field %q expects a string, got %T", key, value)
		}
		updated.IdealResponse = text
		return updated, nil
	}
	if _, ok := s.Spec(key); !ok {
		return Rating{}, fmt.Errorf("unknown rating field %q", key)
	}
	n, err := asInt(value)
	if err != nil {
		return Rating{}, fmt.Errorf("field %q: %w", key, err)
	}
	updated.Metrics[key] = s.Clamp(key, n)
	return updated, nil
}

// asInt accepts the numeric types a JSON edit intent can arrive as.
func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expects a number, got %T", value)
	}
}

// Rating is the mutable per-(call, turn) judgment record: one integer
// value per configured metric plus the free-text ideal response.
type Rating struct {
	Metrics       map[string]int `json:"metrics"`
	IdealResponse string         `json:"ideal_response"`
}

// Clone returns an independent copy.
func (r Rating) Clone() Rating {
	metrics := make(map[string]int, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
	}
	return Rating{Metrics: metrics, IdealResponse: r.IdealResponse}
}

// IsEmpty reports whether the rating is semantically indistinguishable
// from "no rating exists": every metric unset and text blank.
func (r Rating) IsEmpty() bool {
	for _, v := range r.Metrics {
		if v != 0 {
			return false
		}
	}
	return strings.TrimSpace(r.IdealResponse) == ""
}

// RatingCollection maps call id -> turn position -> Rating. It is the
// rating store's sole piece of authoritative mutable state; everything
// outside the store only ever sees clones.
type RatingCollection map[string]map[int]Rating

// Get returns the rating at (callID, turn) if present.
func (c RatingCollection) Get(callID string, turn int) (Rating, bool) {
	turns, ok := c[callID]
	if !ok {
		return Rating{}, false
	}
	r, ok := turns[turn]
	return r, ok
}

// Set stores a rating at (callID, turn), creating the call entry if absent.
func (c RatingCollection) Set(callID string, turn int, r Rating) {
	turns, ok := c[callID]
	if !ok {
		turns = make(map[int]Rating)
		c[callID] = turns
	}
	turns[turn] = r
}

// Clone returns a deep copy of the collection.
func (c RatingCollection) Clone() RatingCollection {
	out := make(RatingCollection, len(c))
	for callID, turns := range c {
		cloned := make(map[int]Rating, len(turns))
		for turn, r := range turns {
			cloned[turn] = r.Clone()
		}
		out[callID] = cloned
	}
	return out
}
