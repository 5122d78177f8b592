package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scenepatch/scenepatch/internal/errors"
)

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	// Check defaults
	if cfg.SettingsFile != "settings/builder.json" {
		t.Errorf("expected default settings file, got %s", cfg.SettingsFile)
	}

	if cfg.Checker.Dir != "assets/LoadScene" || cfg.Checker.Suffix != "s.fire" || cfg.Checker.Node != "Checker" {
		t.Errorf("unexpected checker defaults: %+v", cfg.Checker)
	}

	if cfg.Anchor != "Canvas" {
		t.Errorf("expected default anchor 'Canvas', got %s", cfg.Anchor)
	}

	if cfg.InjectedName != "InjectedNode" {
		t.Errorf("expected default injected name 'InjectedNode', got %s", cfg.InjectedName)
	}

	if cfg.Editor.DefineSymbol != "SDK" || cfg.Editor.DefineGroup != "iPhone" {
		t.Errorf("unexpected editor defaults: %+v", cfg.Editor)
	}

	if cfg.SkipPatched {
		t.Error("expected skip_patched to default to false")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	// Create temporary directory with config file
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := `
project: game
anchor: Root
skip_patched: true
checker:
  node: Gate
  suffix: Check.fire
log:
  level: debug
`
	os.WriteFile("scenepatch.yaml", []byte(configContent), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Anchor != "Root" {
		t.Errorf("expected anchor 'Root', got %s", cfg.Anchor)
	}

	if !cfg.SkipPatched {
		t.Error("expected skip_patched from config file")
	}

	if cfg.Checker.Node != "Gate" || cfg.Checker.Suffix != "Check.fire" {
		t.Errorf("unexpected checker config: %+v", cfg.Checker)
	}

	// untouched nested keys keep their defaults
	if cfg.Checker.Dir != "assets/LoadScene" {
		t.Errorf("expected default checker dir, got %s", cfg.Checker.Dir)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}

	if got := cfg.SettingsPath(); got != filepath.Join("game", "settings", "builder.json") {
		t.Errorf("unexpected settings path %s", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	t.Setenv("SCENEPATCH_ANCHOR", "HUD")
	t.Setenv("SCENEPATCH_CHECKER_NODE", "Gatekeeper")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Anchor != "HUD" {
		t.Errorf("expected anchor from environment, got %s", cfg.Anchor)
	}
	if cfg.Checker.Node != "Gatekeeper" {
		t.Errorf("expected checker node from environment, got %s", cfg.Checker.Node)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for explicit missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"empty anchor", func(c *Config) { c.Anchor = "" }, "anchor"},
		{"blank checker node", func(c *Config) { c.Checker.Node = "  " }, "checker.node"},
		{"empty settings", func(c *Config) { c.SettingsFile = "" }, "settings_file"},
		{"ext without dot", func(c *Config) { c.SceneExt = "fire" }, "scene_ext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			oldWd, _ := os.Getwd()
			os.Chdir(tmpDir)
			defer os.Chdir(oldWd)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("expected defaults to load, got %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if !errors.Is(err, errors.ConfigMissing) {
				t.Fatalf("expected config_missing, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestAbsolutePathsIgnoreProject(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "assets")
	cfg := &Config{Project: "game", AssetsDir: abs, Checker: CheckerConfig{Dir: "assets/LoadScene"}}

	if cfg.AssetsPath() != abs {
		t.Errorf("expected absolute assets dir to be kept, got %s", cfg.AssetsPath())
	}
	if cfg.CheckerDir() != filepath.Join("game", "assets", "LoadScene") {
		t.Errorf("unexpected checker dir %s", cfg.CheckerDir())
	}
}

func TestReadEditorInputs(t *testing.T) {
	t.Setenv(EnvScript, "")
	t.Setenv(EnvSceneIndex, "")

	if _, err := ReadEditorInputs(); !errors.Is(err, errors.ConfigMissing) {
		t.Errorf("expected config_missing without script, got %v", err)
	}

	t.Setenv(EnvScript, "Assets/Scripts/ScoreTracker.cs")
	in, err := ReadEditorInputs()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if in.HasIndex {
		t.Error("expected HasIndex to be false without scene index")
	}
	if in.ScriptName() != "ScoreTracker" {
		t.Errorf("expected script name 'ScoreTracker', got %s", in.ScriptName())
	}

	t.Setenv(EnvSceneIndex, "two")
	if _, err := ReadEditorInputs(); !errors.Is(err, errors.ConfigMissing) {
		t.Errorf("expected config_missing for non-integer index, got %v", err)
	}

	t.Setenv(EnvSceneIndex, " 2 ")
	in, err = ReadEditorInputs()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !in.HasIndex || in.SceneIndex != 2 {
		t.Errorf("expected scene index 2, got %+v", in)
	}
}
