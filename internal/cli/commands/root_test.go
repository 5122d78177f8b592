package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scenepatch/scenepatch/internal/errors"
)

// executeCommand runs the root command with args and returns stdout and
// stderr
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "scene", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

// writeConfig writes a scenepatch.yaml for root that keeps logging quiet
func writeConfig(t *testing.T, root string, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenepatch.yaml")
	content := fmt.Sprintf("project: %s\nlog:\n  level: error\n%s", root, extra)
	writeTestFile(t, path, []byte(content))
	return path
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "scenepatch" {
		t.Errorf("expected Use to be 'scenepatch', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	// Check subcommands are registered
	expectedCommands := []string{
		"version",
		"inject",
		"editor",
		"inspect",
		"watch",
	}

	for _, expected := range expectedCommands {
		found := false
		for _, cmd := range cmd.Commands() {
			if cmd.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestNewVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	stdout, _, err := executeCommand(t, "version", "--no-color")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}

	for _, want := range []string{"scenepatch version: 1.0.0-test", "Git commit: abc123", "Build date: 2025-01-01", "Go version: go1.23"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestLoadConfigVerbose(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")

	configFile = path
	verbose = true
	defer func() {
		configFile = ""
		verbose = false
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected --verbose to force debug logging, got %s", cfg.Log.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "inject", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestSuggestions(t *testing.T) {
	base := errors.New(errors.AnchorNotFound, "Canvs", "no node named %q", "Canvs")

	err := withSuggestions(base, "Canvs", []string{"Canvas", "Camera"})
	if got := suggestionsOf(err); len(got) != 1 || got[0] != "Canvas" {
		t.Errorf("expected [Canvas], got %v", got)
	}
	if !errors.Is(err, errors.AnchorNotFound) {
		t.Error("expected suggestions to keep the error kind")
	}

	if err := withSuggestions(base, "Canvs", []string{"Background"}); err != error(base) {
		t.Errorf("expected error without close candidates to be returned as-is, got %v", err)
	}
}
