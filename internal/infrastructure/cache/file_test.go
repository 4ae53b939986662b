package cache

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/callreview-team/call-review/internal/domain/entities"
)

func testSet() entities.MetricSet {
	return entities.NewMetricSet([]string{"stars", "accuracy"}, 5, "comment")
}

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(dir, testSet(), zap.NewNop()), dir
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)
	set := testSet()

	collection := make(entities.RatingCollection)
	r := set.Empty()
	r.Metrics["stars"] = 4
	r.IdealResponse = "tighter answer"
	collection.Set("call-1", 2, r)

	fs.SaveRatings(collection)
	loaded := fs.LoadRatings()

	got, ok := loaded.Get("call-1", 2)
	if !ok {
		t.Fatalf("saved rating missing after reload")
	}
	if got.Metrics["stars"] != 4 || got.IdealResponse != "tighter answer" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Metrics["accuracy"] != 0 {
		t.Fatalf("unset metric should round-trip as 0: %+v", got.Metrics)
	}
}

func TestFileStoreAbsentSlotIsEmpty(t *testing.T) {
	fs, _ := newTestFileStore(t)
	if got := fs.LoadRatings(); len(got) != 0 {
		t.Fatalf("absent slot should load empty, got %v", got)
	}
	if got := fs.LoadFlags(); len(got) != 0 {
		t.Fatalf("absent flags slot should load empty, got %v", got)
	}
}

func TestFileStoreCorruptSlotDegradesToEmpty(t *testing.T) {
	fs, dir := newTestFileStore(t)
	if err := os.WriteFile(filepath.Join(dir, ratingsSlot), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, flagsSlot), []byte("[]"), 0o644); err != nil {
		t.Fatalf("write corrupt flags: %v", err)
	}

	if got := fs.LoadRatings(); len(got) != 0 {
		t.Fatalf("corrupt slot should degrade to empty, got %v", got)
	}
	if got := fs.LoadFlags(); len(got) != 0 {
		t.Fatalf("corrupt flags slot should degrade to empty, got %v", got)
	}
}

func TestFileStoreClampsAndFiltersOnLoad(t *testing.T) {
	fs, dir := newTestFileStore(t)
	payload := `{
		"call-1": {
			"0": {"stars": 99, "accuracy": -2, "comment": "keep", "junk": 3},
			"bad-turn": {"stars": 1},
			"-1": {"stars": 1}
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, ratingsSlot), []byte(payload), 0o644); err != nil {
		t.Fatalf("write slot: %v", err)
	}

	loaded := fs.LoadRatings()
	got, ok := loaded.Get("call-1", 0)
	if !ok {
		t.Fatalf("valid entry missing")
	}
	if got.Metrics["stars"] != 5 {
		t.Errorf("out-of-range cache value should clamp on load: stars = %d", got.Metrics["stars"])
	}
	if got.Metrics["accuracy"] != 0 {
		t.Errorf("below-range cache value should clamp to 0: accuracy = %d", got.Metrics["accuracy"])
	}
	if _, present := got.Metrics["junk"]; present {
		t.Errorf("unknown metric keys must be dropped")
	}
	if got.IdealResponse != "keep" {
		t.Errorf("text field lost: %q", got.IdealResponse)
	}
	if turns := loaded["call-1"]; len(turns) != 1 {
		t.Errorf("malformed turn keys must be skipped, got %v", turns)
	}
}

func TestFileStoreFlagsRoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)
	fs.SaveFlags(map[string]bool{"call-1": true, "call-2": false})

	flags := fs.LoadFlags()
	if !flags["call-1"] || flags["call-2"] {
		t.Fatalf("flags round trip mismatch: %v", flags)
	}
}

func TestFileStoreWriteFailureIsSwallowed(t *testing.T) {
	set := testSet()
	// Point the store at a path that cannot be a directory.
	dir := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(dir, []byte("file"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	fs := NewFileStore(dir, set, zap.NewNop())

	collection := make(entities.RatingCollection)
	collection.Set("call-1", 0, set.Empty())

	// Must not panic or surface an error.
	fs.SaveRatings(collection)
	fs.SaveFlags(map[string]bool{"call-1": true})

	if got := fs.LoadRatings(); len(got) != 0 {
		t.Fatalf("nothing should have persisted, got %v", got)
	}
}
