// Package assets locates files inside a project's asset tree: scenes by the
// UUID recorded in their metadata sidecar, the launch scene named by the
// build settings, and the checker scene picked by filename suffix.
package assets

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/utils"
)

// MetaExt is the extension of metadata sidecar files
const MetaExt = ".meta"

// Metadata is the part of a sidecar file the resolver reads
type Metadata struct {
	UUID string `json:"uuid"`
}

// Resolver maps asset UUIDs to primary asset files
type Resolver struct {
	// Ext restricts matches to primary assets with this extension
	// (e.g. ".fire"). Empty accepts any sidecar.
	Ext    string
	logger *zap.Logger
}

// NewResolver creates a resolver for assets with the given extension
func NewResolver(ext string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{Ext: ext, logger: logger}
}

// outcome is the result of inspecting one sidecar
type outcome int

const (
	skipped outcome = iota // unreadable or malformed sidecar
	mismatch
	matched
)

// Resolve walks root depth-first in directory listing order and returns the
// primary asset paired with the first sidecar whose uuid equals target and
// whose asset exists on disk. Unreadable sidecars are skipped.
func (r *Resolver) Resolve(root, target string) (string, error) {
	suffix := r.Ext + MetaExt
	var found string
	var visited, skips int

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}

		visited++
		switch r.inspect(path, target) {
		case skipped:
			skips++
		case matched:
			found = strings.TrimSuffix(path, MetaExt)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.New(errors.ResolutionFailure, target, "asset directory %s does not exist", root)
		}
		return "", errors.Wrap(errors.IOFailure, root, err)
	}

	if found == "" {
		r.logger.Debug("uuid not found",
			zap.String("uuid", target),
			zap.Int("sidecars", visited),
			zap.Int("skipped", skips))
		return "", errors.New(errors.ResolutionFailure, target, "no %s sidecar under %s carries this uuid", suffix, root)
	}

	r.logger.Debug("uuid resolved", zap.String("uuid", target), zap.String("path", found))
	return found, nil
}

func (r *Resolver) inspect(path, target string) outcome {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("skipping unreadable sidecar", zap.String("path", path), zap.Error(err))
		return skipped
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		r.logger.Debug("skipping malformed sidecar", zap.String("path", path), zap.Error(err))
		return skipped
	}
	if meta.UUID != target {
		return mismatch
	}
	if !utils.FileExists(strings.TrimSuffix(path, MetaExt)) {
		r.logger.Debug("sidecar matches but asset is missing", zap.String("path", path))
		return mismatch
	}
	return matched
}
