// Package unity is a file-backed editor host for Unity projects. It reads and
// rewrites the project's text-serialized assets directly instead of going
// through a running editor.
package unity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/scenepatch/scenepatch/internal/editor"
	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/utils"
)

// Project-relative locations of the assets the host reads
const (
	AssetsDir          = "Assets"
	BuildSettingsPath  = "ProjectSettings/EditorBuildSettings.asset"
	PlayerSettingsPath = "ProjectSettings/ProjectSettings.asset"
	ScriptMetaSuffix   = ".cs.meta"
)

// Project is a Unity project on disk
type Project struct {
	Root string

	// NewFileID generates local file identifiers for injected objects
	NewFileID func() int64

	logger *zap.Logger
}

var _ editor.Host = (*Project)(nil)

// Open returns the project rooted at root
func Open(root string, logger *zap.Logger) (*Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(filepath.Join(root, "ProjectSettings"))
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ConfigMissing, root, "not a Unity project (no ProjectSettings directory)")
	}
	return &Project{Root: root, NewFileID: RandomFileID, logger: logger}, nil
}

func (p *Project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// unityHeader matches the directive and document lines of Unity's YAML
// dialect that a standard YAML parser rejects
var unityHeader = regexp.MustCompile(`(?m)^(%TAG .*|%YAML .*|--- !u!.*)$`)

// plainYAML rewrites a Unity asset into standard YAML
func plainYAML(data []byte) []byte {
	return unityHeader.ReplaceAllFunc(data, func(line []byte) []byte {
		if bytes.HasPrefix(line, []byte("---")) {
			return []byte("---")
		}
		return nil
	})
}

type buildScene struct {
	Enabled int    `yaml:"enabled"`
	Path    string `yaml:"path"`
	GUID    string `yaml:"guid"`
}

type buildSettings struct {
	EditorBuildSettings struct {
		Scenes []buildScene `yaml:"m_Scenes"`
	} `yaml:"EditorBuildSettings"`
}

// EnabledScenes returns the enabled scenes of the build settings, in build
// order
func (p *Project) EnabledScenes() ([]string, error) {
	path := p.path(BuildSettingsPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigMissing, path, "build settings not found")
		}
		return nil, errors.Wrap(errors.IOFailure, path, err)
	}

	var settings buildSettings
	if err := yaml.Unmarshal(plainYAML(data), &settings); err != nil {
		return nil, errors.Wrap(errors.ParseError, path, err)
	}

	var scenes []string
	for _, s := range settings.EditorBuildSettings.Scenes {
		if s.Enabled != 0 && s.Path != "" {
			scenes = append(scenes, s.Path)
		}
	}
	p.logger.Debug("enabled scenes", zap.Int("count", len(scenes)))
	return scenes, nil
}

type scriptMeta struct {
	GUID string `yaml:"guid"`
}

// ResolveType returns the script named name by locating its .cs.meta under
// Assets. The first match in lexical order wins.
func (p *Project) ResolveType(name string) (editor.Type, error) {
	want := name + ScriptMetaSuffix
	files, err := utils.FindFilesWithSuffix(p.path(AssetsDir), want)
	if err != nil {
		return editor.Type{}, errors.Wrap(errors.IOFailure, p.path(AssetsDir), err)
	}

	for _, f := range files {
		if filepath.Base(f) != want {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			p.logger.Debug("skipping unreadable script meta", zap.String("path", f), zap.Error(err))
			continue
		}
		var meta scriptMeta
		if err := yaml.Unmarshal(data, &meta); err != nil || meta.GUID == "" {
			p.logger.Debug("skipping script meta without guid", zap.String("path", f))
			continue
		}
		p.logger.Debug("resolved script", zap.String("name", name), zap.String("path", f), zap.String("guid", meta.GUID))
		return editor.Type{Name: name, ID: meta.GUID}, nil
	}
	return editor.Type{}, errors.New(errors.ResolutionFailure, name, "could not find a script type named %q", name)
}

// OpenScene reads the scene file at path
func (p *Project) OpenScene(path string) (editor.Scene, error) {
	s, err := LoadScene(p.path(path))
	if err != nil {
		return nil, err
	}
	s.name = path
	if p.NewFileID != nil {
		s.newFileID = p.NewFileID
	}
	return s, nil
}

// groupAliases maps build target group names to the numeric keys older
// ProjectSettings files use
var groupAliases = map[string]string{
	"Standalone": "1",
	"iPhone":     "4",
	"iOS":        "4",
	"Android":    "7",
	"WebGL":      "13",
}

// EnsureDefineSymbol adds symbol to the scriptingDefineSymbols entry of group
// in ProjectSettings.asset. The file is left untouched when the symbol is
// already present.
func (p *Project) EnsureDefineSymbol(group, symbol string) (bool, error) {
	path := p.path(PlayerSettingsPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, errors.New(errors.ConfigMissing, path, "player settings not found")
		}
		return false, errors.Wrap(errors.IOFailure, path, err)
	}

	out, added, err := addDefineSymbol(data, group, symbol)
	if err != nil {
		return false, errors.Wrap(errors.ParseError, path, err)
	}
	if !added {
		return false, nil
	}
	if err := utils.WriteFileAtomic(path, out, 0644); err != nil {
		return false, errors.Wrap(errors.IOFailure, path, err)
	}
	return true, nil
}

// addDefineSymbol edits the scriptingDefineSymbols map line by line so the
// rest of the file keeps its exact layout
func addDefineSymbol(data []byte, group, symbol string) ([]byte, bool, error) {
	lines := strings.Split(string(data), "\n")

	start := -1
	indent := ""
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "scriptingDefineSymbols:") {
			start = i
			indent = line[:len(line)-len(trimmed)]
			break
		}
	}
	if start < 0 {
		return nil, false, fmt.Errorf("no scriptingDefineSymbols entry")
	}

	childIndent := indent + "  "
	entry := childIndent + group + ": " + symbol

	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(lines[start], " "), "scriptingDefineSymbols:"))
	if rest != "" {
		block, err := expandFlowMap(rest, childIndent)
		if err != nil {
			return nil, false, fmt.Errorf("scriptingDefineSymbols: %w", err)
		}
		expanded := make([]string, 0, len(lines)+len(block))
		expanded = append(expanded, lines[:start]...)
		expanded = append(expanded, indent+"scriptingDefineSymbols:")
		expanded = append(expanded, block...)
		expanded = append(expanded, lines[start+1:]...)
		lines = expanded
	}

	keys := map[string]bool{group: true}
	if alias, ok := groupAliases[group]; ok {
		keys[alias] = true
	}

	last := start
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, childIndent) {
			break
		}
		last = i

		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || !keys[strings.TrimSpace(key)] {
			continue
		}
		value = strings.TrimSpace(value)
		for _, s := range strings.Split(value, ";") {
			if strings.TrimSpace(s) == symbol {
				return data, false, nil
			}
		}
		if value == "" {
			value = symbol
		} else {
			value += ";" + symbol
		}
		lines[i] = line[:strings.Index(line, ":")+1] + " " + value
		return []byte(strings.Join(lines, "\n")), true, nil
	}

	return joinLines(lines, last+1, entry), true, nil
}

// expandFlowMap rewrites an inline map such as "{1: FOO, 4: BAR}" as block
// entries at indent, keeping the key order
func expandFlowMap(flow, indent string) ([]string, error) {
	if !strings.HasPrefix(flow, "{") || !strings.HasSuffix(flow, "}") {
		return nil, fmt.Errorf("expected a map, got %q", flow)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(flow), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a map, got %q", flow)
	}

	m := doc.Content[0]
	block := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i], m.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("expected scalar entries, got %q", flow)
		}
		block = append(block, strings.TrimRight(indent+key.Value+": "+value.Value, " "))
	}
	return block, nil
}

// joinLines inserts line at index and joins the result
func joinLines(lines []string, index int, line string) []byte {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:index]...)
	out = append(out, line)
	out = append(out, lines[index:]...)
	return []byte(strings.Join(out, "\n"))
}
