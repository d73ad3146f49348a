package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/planbureau/planproof/internal/app"
)

// resetConfigFlags returns the package flag variables to their defaults and
// restores whatever the test found after it finishes, so buildConfig can be
// exercised without going through cobra.
func resetConfigFlags(t *testing.T) {
	t.Helper()
	output, corpusPath, configFile := flagOutputDir, flagCorpus, flagConfigFile
	base, model, key, font := flagAIBase, flagAIModel, flagAIKey, flagPDFFont
	t.Cleanup(func() {
		flagOutputDir, flagCorpus, flagConfigFile = output, corpusPath, configFile
		flagAIBase, flagAIModel, flagAIKey, flagPDFFont = base, model, key, font
	})
	flagOutputDir = "output"
	flagCorpus, flagConfigFile = "", ""
	flagAIBase, flagAIModel, flagAIKey, flagPDFFont = "", "", "", ""
}

func TestBuildConfig_EnvFillsBehindFlags(t *testing.T) {
	resetConfigFlags(t)
	t.Setenv("LLM_BASE_URL", "https://api.example.com/v1")
	t.Setenv("LLM_MODEL", "deepseek-chat")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("PDF_FONT", "/fonts/notosans.ttf")

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.LLMBaseURL != "https://api.example.com/v1" || cfg.LLMModel != "deepseek-chat" {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if cfg.LLMAPIKey != "sk-test" || cfg.PDFFontPath != "/fonts/notosans.ttf" {
		t.Fatalf("environment not applied: %+v", cfg)
	}

	flagAIModel = "gpt-4o"
	cfg, err = buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.LLMModel != "gpt-4o" {
		t.Fatalf("flag should beat environment, got %q", cfg.LLMModel)
	}
}

func TestBuildConfig_DotenvReachesConfig(t *testing.T) {
	resetConfigFlags(t)
	t.Setenv("LLM_MODEL", "placeholder")
	os.Unsetenv("LLM_MODEL")

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("LLM_MODEL=deepseek-chat\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := app.LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.LLMModel != "deepseek-chat" {
		t.Fatalf("dotenv value lost, got %q", cfg.LLMModel)
	}
}

func TestBuildConfig_EnvBeatsConfigFile(t *testing.T) {
	resetConfigFlags(t)
	t.Setenv("LLM_MODEL", "deepseek-chat")

	cfgPath := filepath.Join(t.TempDir(), "planproof.yaml")
	if err := os.WriteFile(cfgPath, []byte("ai:\n  model: file-model\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	flagConfigFile = cfgPath

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.LLMModel != "deepseek-chat" {
		t.Fatalf("environment should beat the config file, got %q", cfg.LLMModel)
	}
}

func TestBuildConfig_CorpusFromConfigFile(t *testing.T) {
	resetConfigFlags(t)

	cfgPath := filepath.Join(t.TempDir(), "planproof.yaml")
	if err := os.WriteFile(cfgPath, []byte("corpus: /rules/custom.yaml\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	flagConfigFile = cfgPath

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.CorpusPath != "/rules/custom.yaml" {
		t.Fatalf("corpus path from config file lost, got %q", cfg.CorpusPath)
	}

	flagCorpus = "/rules/flag.yaml"
	cfg, err = buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.CorpusPath != "/rules/flag.yaml" {
		t.Fatalf("flag should beat the config file, got %q", cfg.CorpusPath)
	}
}
