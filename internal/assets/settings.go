package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/utils"
)

// StartSceneKey is the build settings field naming the launch scene UUID
const StartSceneKey = "startScene"

// ReadStartScene returns the launch scene UUID recorded in the project's
// build settings file (settings/builder.json).
func ReadStartScene(path string) (string, error) {
	if !utils.FileExists(path) {
		return "", errors.New(errors.ConfigMissing, path, "build settings file not found")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return "", errors.Wrap(errors.ParseError, path, err)
	}

	uuid := strings.TrimSpace(v.GetString(StartSceneKey))
	if uuid == "" {
		return "", errors.New(errors.ConfigMissing, path, "%s is not set", StartSceneKey)
	}
	return uuid, nil
}

// FindChecker returns the first file in dir, in listing order, whose name
// ends with suffix.
func FindChecker(dir, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ResolutionFailure, dir, "checker scene directory does not exist")
		}
		return "", errors.Wrap(errors.IOFailure, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", errors.New(errors.ResolutionFailure, dir, "no scene ending with %q", suffix)
}
