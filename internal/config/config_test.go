package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv(configPathEnv)
	os.Unsetenv(databaseDSNEnv)
	os.Unsetenv(ollamaURLEnv)
	os.Unsetenv(ollamaModelEnv)

	cfg := Load()

	if cfg.Ollama.URL != "http://localhost:11434" {
		t.Fatalf("unexpected default ollama url: %s", cfg.Ollama.URL)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Fatalf("unexpected default workers: %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.Classify.Timeout() != 60*time.Second {
		t.Fatalf("unexpected classify timeout: %v", cfg.Pipeline.Classify.Timeout())
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Scanner != "jin10" {
		t.Fatalf("unexpected default sites: %+v", cfg.Sites)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
database:
  dsn: postgres://file:file@db:5432/news
ollama:
  model: qwen2.5:7b
pipeline:
  workers: 8
  classify:
    timeoutSeconds: 30
    attempts: 5
scraper:
  windowMinutes: 60
sites:
  - name: jin10-mirror
    scanner: jin10
    url: https://mirror.example.org/
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env:env@db:5432/news")
	t.Setenv(ollamaModelEnv, "")

	cfg := Load()

	// Env beats file for the DSN.
	if cfg.Database.DSN != "postgres://env:env@db:5432/news" {
		t.Fatalf("env override not applied: %s", cfg.Database.DSN)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Fatalf("file override not applied: %s", cfg.Ollama.Model)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Fatalf("workers override not applied: %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.Classify.Attempts != 5 || cfg.Pipeline.Classify.TimeoutSeconds != 30 {
		t.Fatalf("classify stage override not applied: %+v", cfg.Pipeline.Classify)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Pipeline.Classify.BackoffSeconds != 2 {
		t.Fatalf("classify backoff default lost: %d", cfg.Pipeline.Classify.BackoffSeconds)
	}
	if cfg.Pipeline.Analyze.TimeoutSeconds != 120 {
		t.Fatalf("analyze defaults lost: %+v", cfg.Pipeline.Analyze)
	}
	if cfg.Scraper.Window() != time.Hour {
		t.Fatalf("scraper window not applied: %v", cfg.Scraper.Window())
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Name != "jin10-mirror" {
		t.Fatalf("sites override not applied: %+v", cfg.Sites)
	}
}

func TestSchedulerLocationFallback(t *testing.T) {
	cfg := Config{Scheduler: SchedulerConfig{Timezone: "Not/AZone"}}
	cfg.bindTimezone()

	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}
