package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(googleAPIKeyEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.Strategy != "catchup" {
		t.Fatalf("unexpected strategy %s", cfg.Fetch.Strategy)
	}
	if diff := cmp.Diff([]string{"chem-ph", "quant-ph"}, cfg.CategoryNames()); diff != "" {
		t.Fatalf("categories (-want +got):\n%s", diff)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location %s", cfg.Scheduler.Location())
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
logging:
  level: debug
output:
  folder: /data/arxiv
fetch:
  strategy: advance
  timeout: 45s
categories:
  - name: cond-mat
    archive: cond-mat
    group: physics
summary:
  enabled: true
  provider: openai
  openai:
    model: gpt-4o-mini
scheduler:
  timezone: Asia/Shanghai
workers: 3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(outputFolderEnv, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Output.Folder != "/data/arxiv" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Fetch.Strategy != "advance" || cfg.Fetch.Timeout != 45*time.Second {
		t.Fatalf("fetch not merged: %+v", cfg.Fetch)
	}
	if cfg.Fetch.PageSize != 200 {
		t.Fatalf("defaults must survive merge, got page size %d", cfg.Fetch.PageSize)
	}
	if !cfg.Summary.Enabled || cfg.Summary.Provider != "openai" {
		t.Fatalf("summary not merged: %+v", cfg.Summary)
	}
	if cfg.Summary.OpenAI.Model != "gpt-4o-mini" || cfg.Summary.OpenAI.APIKey != "sk-test" {
		t.Fatalf("openai provider not merged: %+v", cfg.Summary.OpenAI)
	}
	if cfg.Summary.OpenAI.Endpoint == "" {
		t.Fatalf("default endpoint lost")
	}
	if cfg.Workers != 3 {
		t.Fatalf("unexpected workers %d", cfg.Workers)
	}
	if cfg.Scheduler.Location().String() != "Asia/Shanghai" {
		t.Fatalf("unexpected location %s", cfg.Scheduler.Location())
	}

	cat, err := cfg.Category("cond-mat")
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	if cat.Archive != "cond-mat" {
		t.Fatalf("unexpected archive %s", cat.Archive)
	}
}

func TestCategoryUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Default().Category("astro-ph")
	if !errors.Is(err, ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("fetch: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
