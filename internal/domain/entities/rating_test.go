package entities

import (
	"testing"
)

func testSet() MetricSet {
	return NewMetricSet([]string{"stars", "accuracy"}, 5, "comment")
}

func TestEmptyIsEmpty(t *testing.T) {
	set := testSet()
	r := set.Empty()
	if !r.IsEmpty() {
		t.Fatalf("Empty() should be empty, got %+v", r)
	}
	if len(r.Metrics) != 2 {
		t.Fatalf("expected every metric present, got %v", r.Metrics)
	}
}

func TestIsEmptyWhitespaceText(t *testing.T) {
	set := testSet()
	r := set.Empty()
	r.IdealResponse = "   \n\t"
	if !r.IsEmpty() {
		t.Fatalf("whitespace-only text should still count as empty")
	}
	r.IdealResponse = "x"
	if r.IsEmpty() {
		t.Fatalf("non-blank text should not be empty")
	}
}

func TestApplyClampsMetric(t *testing.T) {
	set := testSet()
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"in range", 3, 3},
		{"above max", 9, 5},
		{"below min", -3, 0},
		{"json number", float64(4), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := set.Apply(set.Empty(), "stars", tt.value)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := r.Metrics["stars"]; got != tt.want {
				t.Fatalf("stars = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApplyText(t *testing.T) {
	set := testSet()
	r, err := set.Apply(set.Empty(), "comment", "better answer")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.IdealResponse != "better answer" {
		t.Fatalf("IdealResponse = %q", r.IdealResponse)
	}
	if r.IsEmpty() {
		t.Fatalf("rating with text should not be empty")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	set := testSet()
	original := set.Empty()
	if _, err := set.Apply(original, "stars", 5); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if original.Metrics["stars"] != 0 {
		t.Fatalf("input rating was mutated: %v", original.Metrics)
	}
}

func TestApplyUnknownField(t *testing.T) {
	set := testSet()
	if _, err := set.Apply(set.Empty(), "vibes", 3); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := set.Apply(set.Empty(), "stars", "five"); err == nil {
		t.Fatalf("expected error for non-numeric metric value")
	}
}

func TestIsSetValue(t *testing.T) {
	set := testSet()
	tests := []struct {
		value int
		want  bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
		{-1, false},
		{9, false},
	}
	for _, tt := range tests {
		if got := set.IsSetValue("stars", tt.value); got != tt.want {
			t.Errorf("IsSetValue(stars, %d) = %v, want %v", tt.value, got, tt.want)
		}
	}
	if set.IsSetValue("vibes", 3) {
		t.Errorf("unknown metric should never be a set value")
	}
}

func TestCollectionCloneIsIndependent(t *testing.T) {
	set := testSet()
	c := make(RatingCollection)
	r := set.Empty()
	r.Metrics["stars"] = 3
	c.Set("call-1", 0, r)

	clone := c.Clone()
	cloned, _ := clone.Get("call-1", 0)
	cloned.Metrics["stars"] = 5
	clone.Set("call-1", 0, cloned)

	got, _ := c.Get("call-1", 0)
	if got.Metrics["stars"] != 3 {
		t.Fatalf("mutating the clone leaked into the original: %v", got.Metrics)
	}
}

func TestTurnIsAssistant(t *testing.T) {
	if !(Turn{Author: "Assistant"}).IsAssistant() {
		t.Fatalf("case-insensitive role match expected")
	}
	if (Turn{Author: "user"}).IsAssistant() {
		t.Fatalf("user turn is not assistant")
	}
}
