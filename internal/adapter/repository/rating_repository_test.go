package repository

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/callreview-team/call-review/internal/domain/entities"
)

func testSet() entities.MetricSet {
	return entities.NewMetricSet([]string{"stars", "accuracy"}, 5, "comment")
}

func TestRecordFromRowTypesWithoutClamping(t *testing.T) {
	set := testSet()
	row := entities.TurnRating{
		CallID:        "call-1",
		TurnIndex:     3,
		ReviewerID:    "reviewer-1",
		Metrics:       datatypes.NewJSONType(map[string]int{"stars": 9, "accuracy": 2, "junk": 4}),
		IdealResponse: "remote text",
	}

	record, ok := recordFromRow(row, set)
	if !ok {
		t.Fatalf("valid row was dropped")
	}
	if record.CallID != "call-1" || record.TurnIndex != 3 {
		t.Fatalf("key mismatch: %+v", record)
	}
	// Out-of-range values pass through untouched so the reconciler
	// can see and reject them.
	if record.Rating.Metrics["stars"] != 9 {
		t.Errorf("stars = %d, want 9 unclamped", record.Rating.Metrics["stars"])
	}
	if record.Rating.Metrics["accuracy"] != 2 {
		t.Errorf("accuracy = %d, want 2", record.Rating.Metrics["accuracy"])
	}
	if _, present := record.Rating.Metrics["junk"]; present {
		t.Errorf("metric keys outside the configured set must be dropped")
	}
	if record.Rating.IdealResponse != "remote text" {
		t.Errorf("text lost: %q", record.Rating.IdealResponse)
	}
}

func TestRecordFromRowFillsMissingMetrics(t *testing.T) {
	set := testSet()
	row := entities.TurnRating{
		CallID:    "call-1",
		TurnIndex: 0,
		Metrics:   datatypes.NewJSONType(map[string]int{"stars": 4}),
	}

	record, ok := recordFromRow(row, set)
	if !ok {
		t.Fatalf("valid row was dropped")
	}
	if v, present := record.Rating.Metrics["accuracy"]; !present || v != 0 {
		t.Fatalf("missing metrics should default to unset, got %v", record.Rating.Metrics)
	}
}

func TestRecordFromRowDropsUnusableRows(t *testing.T) {
	set := testSet()
	tests := []struct {
		name string
		row  entities.TurnRating
	}{
		{"blank call id", entities.TurnRating{CallID: "", TurnIndex: 0}},
		{"negative turn", entities.TurnRating{CallID: "call-1", TurnIndex: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := recordFromRow(tt.row, set); ok {
				t.Fatalf("unusable row was accepted")
			}
		})
	}
}
