package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.Driver != "file" {
		t.Errorf("Cache.Driver = %q, want file", cfg.Cache.Driver)
	}
	if cfg.Review.MetricMax != 5 {
		t.Errorf("MetricMax = %d, want 5", cfg.Review.MetricMax)
	}
	want := []string{"stars", "accuracy", "helpfulness"}
	if len(cfg.Review.MetricKeys) != len(want) {
		t.Fatalf("MetricKeys = %v, want %v", cfg.Review.MetricKeys, want)
	}
	for i, key := range want {
		if cfg.Review.MetricKeys[i] != key {
			t.Errorf("MetricKeys[%d] = %q, want %q", i, cfg.Review.MetricKeys[i], key)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REVIEW_METRICS", " stars , tone ,")
	t.Setenv("REVIEW_METRIC_MAX", "10")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if len(cfg.Review.MetricKeys) != 2 || cfg.Review.MetricKeys[0] != "stars" || cfg.Review.MetricKeys[1] != "tone" {
		t.Errorf("MetricKeys = %v, want [stars tone]", cfg.Review.MetricKeys)
	}
	if cfg.Review.MetricMax != 10 {
		t.Errorf("MetricMax = %d, want 10", cfg.Review.MetricMax)
	}
	if cfg.Cache.Driver != "memory" {
		t.Errorf("Cache.Driver = %q, want memory", cfg.Cache.Driver)
	}
	if !cfg.Database.AutoMigrate {
		t.Errorf("AutoMigrate = false, want true")
	}
}

func TestLoadRejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "tape")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestLoadRejectsMetricKeyCollision(t *testing.T) {
	t.Setenv("REVIEW_METRICS", "stars,ideal_response")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for metric key colliding with ideal-response key")
	}
}

func TestValidateRejectsBlankReviewer(t *testing.T) {
	cfg := &Config{
		Review: ReviewConfig{
			TranscriptPath: "./transcripts.json",
			MetricKeys:     []string{"stars"},
			MetricMax:      5,
		},
		Cache: CacheConfig{Driver: "file"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty reviewer id")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:    "db",
		Port:    "5433",
		User:    "u",
		Password: "p",
		Name:    "ratings",
		SSLMode: "disable",
	}}
	want := "host=db port=5433 user=u password=p dbname=ratings sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
