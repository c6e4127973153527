package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "")
	t.Setenv("RECOMMEND_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Recommend.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Recommend.Timeout)
	}
	if cfg.Recommend.SimilarityMaxUsers != 1000 {
		t.Errorf("similarity max users = %d, want 1000", cfg.Recommend.SimilarityMaxUsers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("RECOMMEND_TIMEOUT", "750ms")
	t.Setenv("RECOMMEND_SCORE_BATCH_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Recommend.Timeout != 750*time.Millisecond {
		t.Errorf("timeout = %v, want 750ms", cfg.Recommend.Timeout)
	}
	if cfg.Recommend.ScoreBatchSize != 25 {
		t.Errorf("batch size = %d, want 25", cfg.Recommend.ScoreBatchSize)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pw")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing database password")
	}
}

func TestLoadRejectsBadScheduleHour(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("RECOMMEND_SIMILARITY_SCHEDULE_HOUR", "25")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for schedule hour out of range")
	}
}
