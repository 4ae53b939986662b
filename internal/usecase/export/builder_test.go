package export

import (
	"encoding/json"
	stdErrors "errors"
	"reflect"
	"testing"

	"github.com/callreview-team/call-review/internal/domain/entities"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
)

func testSet() entities.MetricSet {
	return entities.NewMetricSet([]string{"stars", "accuracy"}, 5, "comment")
}

func testCalls() []entities.Call {
	return []entities.Call{
		{
			ID: "call-1",
			Dialogue: []entities.Turn{
				{Author: "user", Text: "hello"},
				{Author: "assistant", Text: "hi there"},
				{Author: "assistant", Text: "anything else?"},
			},
		},
		{
			ID: "call-2",
			Dialogue: []entities.Turn{
				{Author: "user", Text: "question"},
				{Author: "assistant", Text: "answer"},
			},
		},
	}
}

func ratingWith(set entities.MetricSet, metrics map[string]int, text string) entities.Rating {
	r := set.Empty()
	for k, v := range metrics {
		r.Metrics[k] = v
	}
	r.IdealResponse = text
	return r
}

func TestBuildAnnotatedMergesRatingFields(t *testing.T) {
	set := testSet()
	collection := make(entities.RatingCollection)
	collection.Set("call-1", 2, ratingWith(set, map[string]int{"stars": 5}, "great"))

	out := BuildAnnotated(testCalls(), collection, set)
	if len(out) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(out))
	}

	rated := out[0].Dialogue[2]
	if rated["rating_stars"] != 5 {
		t.Errorf("rating_stars = %v, want 5", rated["rating_stars"])
	}
	if rated["rating_accuracy"] != 0 {
		t.Errorf("rating_accuracy = %v, want 0 (stable shape)", rated["rating_accuracy"])
	}
	if rated["rating_comment"] != "great" {
		t.Errorf("rating_comment = %v", rated["rating_comment"])
	}
	if rated["author"] != "assistant" || rated["text"] != "anything else?" {
		t.Errorf("original fields must be preserved: %v", rated)
	}

	// Unrated turns carry only their original fields.
	for _, entry := range []map[string]interface{}{out[0].Dialogue[0], out[0].Dialogue[1], out[1].Dialogue[0], out[1].Dialogue[1]} {
		if len(entry) != 2 {
			t.Errorf("unrated turn gained fields: %v", entry)
		}
	}
}

func TestBuildAnnotatedSkipsEmptyRatings(t *testing.T) {
	set := testSet()
	collection := make(entities.RatingCollection)
	collection.Set("call-1", 1, set.Empty())

	out := BuildAnnotated(testCalls(), collection, set)
	entry := out[0].Dialogue[1]
	if len(entry) != 2 {
		t.Fatalf("empty rating must never be emitted onto a turn: %v", entry)
	}
}

func TestBuildAnnotatedIgnoresNonAssistantRatings(t *testing.T) {
	set := testSet()
	collection := make(entities.RatingCollection)
	collection.Set("call-1", 0, ratingWith(set, map[string]int{"stars": 4}, ""))

	out := BuildAnnotated(testCalls(), collection, set)
	entry := out[0].Dialogue[0]
	if len(entry) != 2 {
		t.Fatalf("user turn must never be annotated: %v", entry)
	}
}

func TestBuildAnnotatedPreservesOrder(t *testing.T) {
	set := testSet()
	calls := testCalls()
	out := BuildAnnotated(calls, make(entities.RatingCollection), set)
	for i, call := range calls {
		if out[i].CallID != call.ID {
			t.Fatalf("call order changed: %s at %d", out[i].CallID, i)
		}
		for j, turn := range call.Dialogue {
			if out[i].Dialogue[j]["text"] != turn.Text {
				t.Fatalf("turn order changed at %s/%d", call.ID, j)
			}
		}
	}
}

func TestBuildAnnotatedDoesNotMutateInputs(t *testing.T) {
	set := testSet()
	calls := testCalls()
	collection := make(entities.RatingCollection)
	collection.Set("call-1", 1, ratingWith(set, map[string]int{"stars": 2}, "note"))

	callsBefore := make([]entities.Call, len(calls))
	for i, c := range calls {
		callsBefore[i] = c.Clone()
	}
	collectionBefore := collection.Clone()

	_ = BuildAnnotated(calls, collection, set)

	if !reflect.DeepEqual(calls, callsBefore) {
		t.Errorf("calls were mutated")
	}
	if !reflect.DeepEqual(collection, collectionBefore) {
		t.Errorf("rating collection was mutated")
	}
}

// Re-running the builder on its own output, re-keyed by the same
// ratings, must yield the identical document: no duplicated fields,
// no shape drift.
func TestBuildAnnotatedIdempotent(t *testing.T) {
	set := testSet()
	collection := make(entities.RatingCollection)
	collection.Set("call-1", 1, ratingWith(set, map[string]int{"stars": 5, "accuracy": 3}, "better"))
	collection.Set("call-2", 1, ratingWith(set, map[string]int{"stars": 1}, ""))

	first := BuildAnnotated(testCalls(), collection, set)
	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Round-trip the annotated document back into the transcript
	// shape and rebuild with the same ratings.
	var roundTripped []entities.Call
	if err := json.Unmarshal(firstJSON, &roundTripped); err != nil {
		t.Fatalf("unmarshal annotated output: %v", err)
	}
	second := BuildAnnotated(roundTripped, collection, set)
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("export is not idempotent:\nfirst:  %s\nsecond: %s", firstJSON, secondJSON)
	}
}

func TestBuildAnnotatedCallMatchesFullExport(t *testing.T) {
	set := testSet()
	collection := make(entities.RatingCollection)
	collection.Set("call-2", 1, ratingWith(set, map[string]int{"accuracy": 4}, ""))

	full := BuildAnnotated(testCalls(), collection, set)
	single, err := BuildAnnotatedCall(testCalls(), collection, set, "call-2")
	if err != nil {
		t.Fatalf("BuildAnnotatedCall: %v", err)
	}
	if !reflect.DeepEqual(single, full[1]) {
		t.Fatalf("single-call export diverges from the full export entry:\nsingle: %+v\nfull:   %+v", single, full[1])
	}
}

func TestBuildAnnotatedCallUnknownCall(t *testing.T) {
	set := testSet()
	_, err := BuildAnnotatedCall(testCalls(), make(entities.RatingCollection), set, "missing")
	if !stdErrors.Is(err, uerrors.ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound, got %v", err)
	}
}
