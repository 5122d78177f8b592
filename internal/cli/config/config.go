package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/scenepatch/scenepatch/internal/editor"
	"github.com/scenepatch/scenepatch/internal/errors"
)

// Editor-side environment inputs
const (
	EnvScript     = "SCRIPT_TO_PATCH"
	EnvSceneIndex = "SCENE_INDEX_TO_PATCH"
)

// Config represents the scenepatch configuration
type Config struct {
	Project      string        `mapstructure:"project"`
	SettingsFile string        `mapstructure:"settings_file"`
	AssetsDir    string        `mapstructure:"assets_dir"`
	SceneExt     string        `mapstructure:"scene_ext"`
	Checker      CheckerConfig `mapstructure:"checker"`
	Anchor       string        `mapstructure:"anchor"`
	InjectedName string        `mapstructure:"injected_name"`
	SkipPatched  bool          `mapstructure:"skip_patched"`
	Editor       EditorConfig  `mapstructure:"editor"`
	Log          LogConfig     `mapstructure:"log"`
}

// CheckerConfig selects the scene the component type is read from
type CheckerConfig struct {
	Dir    string `mapstructure:"dir"`
	Suffix string `mapstructure:"suffix"`
	Node   string `mapstructure:"node"`
}

// EditorConfig represents the editor-side injector configuration
type EditorConfig struct {
	Project      string `mapstructure:"project"`
	DefineSymbol string `mapstructure:"define_symbol"`
	DefineGroup  string `mapstructure:"define_group"`
	ObjectName   string `mapstructure:"object_name"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from scenepatch.yml or scenepatch.yaml in the
// working directory
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads the configuration from path, or searches the working
// directory when path is empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("project", ".")
	v.SetDefault("settings_file", "settings/builder.json")
	v.SetDefault("assets_dir", "assets")
	v.SetDefault("scene_ext", ".fire")
	v.SetDefault("checker.dir", "assets/LoadScene")
	v.SetDefault("checker.suffix", "s.fire")
	v.SetDefault("checker.node", "Checker")
	v.SetDefault("anchor", "Canvas")
	v.SetDefault("injected_name", "InjectedNode")
	v.SetDefault("skip_patched", false)
	v.SetDefault("editor.project", ".")
	v.SetDefault("editor.define_symbol", "SDK")
	v.SetDefault("editor.define_group", "iPhone")
	v.SetDefault("editor.object_name", "InjectedObject")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scenepatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support (SCENEPATCH_CHECKER_NODE, ...)
	v.SetEnvPrefix("SCENEPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the fields the patch cannot run without
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"settings_file", c.SettingsFile},
		{"assets_dir", c.AssetsDir},
		{"scene_ext", c.SceneExt},
		{"checker.dir", c.Checker.Dir},
		{"checker.suffix", c.Checker.Suffix},
		{"checker.node", c.Checker.Node},
		{"anchor", c.Anchor},
		{"injected_name", c.InjectedName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.New(errors.ConfigMissing, r.key, "must not be empty")
		}
	}

	if !strings.HasPrefix(c.SceneExt, ".") {
		return errors.New(errors.ConfigMissing, "scene_ext", "must start with '.', got: %s", c.SceneExt)
	}
	return nil
}

// SettingsPath returns the build settings file resolved against the project
func (c *Config) SettingsPath() string {
	return c.inProject(c.SettingsFile)
}

// AssetsPath returns the asset tree root resolved against the project
func (c *Config) AssetsPath() string {
	return c.inProject(c.AssetsDir)
}

// CheckerDir returns the checker scene directory resolved against the project
func (c *Config) CheckerDir() string {
	return c.inProject(c.Checker.Dir)
}

func (c *Config) inProject(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Project, p)
}

// EditorInputs holds the environment inputs of the editor-side injector
type EditorInputs struct {
	// Script is the script path or name; only its file stem is used
	Script string
	// SceneIndex is the zero-based index into the enabled build scenes
	SceneIndex int
	// HasIndex reports whether SCENE_INDEX_TO_PATCH was set
	HasIndex bool
}

// ScriptName returns the script's file name without directory or extension
func (in *EditorInputs) ScriptName() string {
	return editor.ScriptName(in.Script)
}

// ReadEditorInputs reads SCRIPT_TO_PATCH and SCENE_INDEX_TO_PATCH from the
// environment. A missing script is an error; a missing index is reported
// through HasIndex so interactive callers can prompt for it.
func ReadEditorInputs() (*EditorInputs, error) {
	v := viper.New()
	_ = v.BindEnv("script", EnvScript)
	_ = v.BindEnv("scene_index", EnvSceneIndex)

	in := &EditorInputs{Script: strings.TrimSpace(v.GetString("script"))}
	if in.Script == "" {
		return nil, errors.New(errors.ConfigMissing, EnvScript, "environment variable is not set")
	}

	raw := strings.TrimSpace(v.GetString("scene_index"))
	if raw == "" {
		return in, nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New(errors.ConfigMissing, EnvSceneIndex, "not a valid integer: %q", raw)
	}
	in.SceneIndex = idx
	in.HasIndex = true
	return in, nil
}
