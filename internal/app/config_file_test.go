package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planproof.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
output: out
corpus: rules.yaml
ai:
  enable: true
  model: deepseek-chat
pdf:
  enable: true
  font: /fonts/cjk.ttf
timeout: 5m
workers: 4
`)
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc.Output != "out" || fc.AI.Model != "deepseek-chat" || !fc.AI.Enable {
		t.Fatalf("unexpected config %+v", fc)
	}
	if fc.Timeout != 5*time.Minute || fc.Workers != 4 {
		t.Fatalf("unexpected config %+v", fc)
	}
}

func TestLoadConfigFile_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "outpt: typo\n")
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestFileConfig_ApplyPreservesExistingValues(t *testing.T) {
	fc := &FileConfig{Output: "from-file", Corpus: "file-rules.yaml", Workers: 8}
	fc.AI.Model = "file-model"

	cfg := Config{OutputDir: "from-flag", LLMModel: ""}
	fc.Apply(&cfg)

	if cfg.OutputDir != "from-flag" {
		t.Fatalf("flag value overwritten: %q", cfg.OutputDir)
	}
	if cfg.CorpusPath != "file-rules.yaml" || cfg.LLMModel != "file-model" {
		t.Fatalf("empty fields not filled: %+v", cfg)
	}
	if cfg.BatchWorkers != 8 {
		t.Fatalf("workers not applied: %d", cfg.BatchWorkers)
	}
}

func TestFileConfig_ApplyBooleansOnlyEnable(t *testing.T) {
	fc := &FileConfig{}
	cfg := Config{AIEnabled: true}
	fc.Apply(&cfg)
	if !cfg.AIEnabled {
		t.Fatal("file config must not disable a flag-enabled feature")
	}
}
