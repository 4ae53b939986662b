// Package export re-materializes transcript data merged with collected
// ratings. Builders are pure: they never mutate their inputs and are
// idempotent, since annotation reads only the authored fields of each
// turn.
package export

import (
	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/infrastructure/metrics"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
)

// fieldPrefix namespaces the additive rating fields on annotated turns.
const fieldPrefix = "rating_"

// AnnotatedCall mirrors the transcript wire shape with rating fields
// merged onto qualifying turns.
type AnnotatedCall struct {
	CallID   string                   `json:"callId"`
	Dialogue []map[string]interface{} `json:"dialogue"`
}

// BuildAnnotated rebuilds every call with the current ratings merged
// on. A turn gains rating fields only when it is assistant-authored and
// a non-empty rating exists for its position; every other turn is
// emitted unchanged. Call order and turn order are preserved exactly.
func BuildAnnotated(calls []entities.Call, collection entities.RatingCollection, set entities.MetricSet) []AnnotatedCall {
	out := make([]AnnotatedCall, 0, len(calls))
	for _, call := range calls {
		out = append(out, annotateCall(call, collection[call.ID], set))
	}
	metrics.Default.ExportsBuilt.Inc()
	return out
}

// BuildAnnotatedCall is BuildAnnotated restricted to one call. Its
// output is identical to the corresponding entry of the full export.
func BuildAnnotatedCall(calls []entities.Call, collection entities.RatingCollection, set entities.MetricSet, callID string) (AnnotatedCall, error) {
	for _, call := range calls {
		if call.ID == callID {
			annotated := annotateCall(call, collection[call.ID], set)
			metrics.Default.ExportsBuilt.Inc()
			return annotated, nil
		}
	}
	return AnnotatedCall{}, uerrors.ErrCallNotFound
}

func annotateCall(call entities.Call, ratings map[int]entities.Rating, set entities.MetricSet) AnnotatedCall {
	dialogue := make([]map[string]interface{}, 0, len(call.Dialogue))
	for position, turn := range call.Dialogue {
		entry := map[string]interface{}{
			"author": turn.Author,
			"text":   turn.Text,
		}
		if turn.IsAssistant() {
			if rating, ok := ratings[position]; ok && !rating.IsEmpty() {
				// Every metric is emitted, 0 included, to keep the
				// annotated shape stable across turns.
				for _, spec := range set.Metrics {
					entry[fieldPrefix+spec.Key] = rating.Metrics[spec.Key]
				}
				entry[fieldPrefix+set.TextKey] = rating.IdealResponse
			}
		}
		dialogue = append(dialogue, entry)
	}
	return AnnotatedCall{CallID: call.ID, Dialogue: dialogue}
}
