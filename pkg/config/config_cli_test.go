package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
)

func resetKoanf(t *testing.T) {
	t.Helper()
	k = koanf.New(".")
}

func TestLoadWithCLIOverrides(t *testing.T) {
	resetKoanf(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := []byte("llm:\n  provider: ollama\n  model: model-a\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.Setenv("ATOMVM_LLM_PROVIDER", "openai"); err != nil {
		t.Fatalf("set env: %v", err)
	}
	defer os.Unsetenv("ATOMVM_LLM_PROVIDER")

	cfg, err := LoadWithCLI([]string{
		"--config", path,
		"--set", "llm.provider=anthropic",
		"--set", "store.provider=qdrant",
		"--set", "run.default_fuel=5000",
	})
	if err != nil {
		t.Fatalf("LoadWithCLI failed: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Fatalf("expected cli override provider, got %s", cfg.LLM.Provider)
	}
	if cfg.Store.Provider != "qdrant" {
		t.Fatalf("expected store.provider override, got %s", cfg.Store.Provider)
	}
	if cfg.Run.DefaultFuel != 5000 {
		t.Fatalf("expected run.default_fuel override, got %d", cfg.Run.DefaultFuel)
	}
}

func TestParseCLIOverridesErrors(t *testing.T) {
	resetKoanf(t)
	if _, _, err := parseCLIOverrides([]string{"--config"}); err == nil {
		t.Fatalf("expected error for missing --config value")
	}
	if _, _, err := parseCLIOverrides([]string{"--set"}); err == nil {
		t.Fatalf("expected error for missing --set value")
	}
	if _, _, err := parseCLIOverrides([]string{"--set", "invalid"}); err == nil {
		t.Fatalf("expected error for invalid --set value")
	}
}
