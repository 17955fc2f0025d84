package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "auto" {
		t.Errorf("expected default provider auto, got %s", cfg.LLMProvider)
	}
	if cfg.OracleTimeout != 12*time.Second {
		t.Errorf("expected default oracle timeout 12s, got %s", cfg.OracleTimeout)
	}
	if !cfg.UseMemoryQueue {
		t.Error("expected memory queue by default")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("ORACLE_TIMEOUT", "3s")
	t.Setenv("WORKER_COUNT", "5")
	t.Setenv("USE_MEMORY_QUEUE", "false")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("expected provider normalized to gemini, got %s", cfg.LLMProvider)
	}
	if cfg.OracleTimeout != 3*time.Second {
		t.Errorf("expected oracle timeout 3s, got %s", cfg.OracleTimeout)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.UseMemoryQueue {
		t.Error("expected memory queue disabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("ORACLE_TIMEOUT", "soon")

	cfg := Load()

	if cfg.WorkerCount != 2 {
		t.Errorf("expected fallback worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.OracleTimeout != 12*time.Second {
		t.Errorf("expected fallback oracle timeout, got %s", cfg.OracleTimeout)
	}
}
