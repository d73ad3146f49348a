package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `
# comment line
LLM_MODEL_TEST=deepseek-chat
LLM_KEY_TEST="quoted-value"

malformed line without equals
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_MODEL_TEST", "")
	os.Unsetenv("LLM_MODEL_TEST")
	t.Setenv("LLM_KEY_TEST", "")
	os.Unsetenv("LLM_KEY_TEST")

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("LLM_MODEL_TEST"); got != "deepseek-chat" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := os.Getenv("LLM_KEY_TEST"); got != "quoted-value" {
		t.Fatalf("quotes not stripped: %q", got)
	}
}

func TestLoadEnvFile_ExistingEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PLANPROOF_TEST_VAR=file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLANPROOF_TEST_VAR", "real")

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("PLANPROOF_TEST_VAR"); got != "real" {
		t.Fatalf("file overrode real environment: %q", got)
	}
}

func TestLoadEnvFile_MissingIsNotAnError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "no-such.env")); err != nil {
		t.Fatalf("missing .env should be tolerated, got %v", err)
	}
}
