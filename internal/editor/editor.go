// Package editor injects a script-bearing object into a scene of an editor
// project. The editor itself is reached through Host: it enumerates the
// enabled build scenes, opens and saves scenes, and resolves a script name to
// a loaded type. Injector only sequences those capabilities.
package editor

import (
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/scenepatch/scenepatch/internal/errors"
)

// DefaultObjectName is the name given to the injected object
const DefaultObjectName = "InjectedObject"

// Type is a script type resolved by the host
type Type struct {
	// Name is the short type name the lookup was made with
	Name string
	// ID is the host's identifier for the type (a script GUID for Unity)
	ID string
}

// Host is the editor environment the injector drives
type Host interface {
	// EnabledScenes returns the enabled build scenes in build order
	EnabledScenes() ([]string, error)
	// OpenScene opens the scene at path
	OpenScene(path string) (Scene, error)
	// ResolveType resolves a short script name to a loaded type
	ResolveType(name string) (Type, error)
	// EnsureDefineSymbol adds symbol to the scripting define symbols of the
	// build target group, reporting whether it had to be added
	EnsureDefineSymbol(group, symbol string) (bool, error)
}

// Scene is a scene opened through the host
type Scene interface {
	// Path returns the scene's path as listed in the build settings
	Path() string
	// AddObject creates a root-level object named name carrying a component
	// of type t
	AddObject(name string, t Type) error
	// Save persists the scene through the host
	Save() error
}

// Options configures an injection
type Options struct {
	// Script is the script path or name; only the file stem is used
	Script string
	// SceneIndex is the zero-based index into the enabled build scenes
	SceneIndex int
	// ObjectName names the created object; DefaultObjectName when empty
	ObjectName string
	// DefineGroup and DefineSymbol select the define symbol ensured by
	// Setup. Both empty skips the step.
	DefineGroup  string
	DefineSymbol string
}

// Result describes an injection
type Result struct {
	ScenePath   string
	Type        Type
	ObjectName  string
	DefineAdded bool
}

// ScriptName returns the file stem of a script path
func ScriptName(script string) string {
	base := filepath.Base(strings.TrimSpace(script))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Injector sequences the host capabilities of an injection
type Injector struct {
	host   Host
	logger *zap.Logger
}

// NewInjector creates an injector for host
func NewInjector(host Host, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{host: host, logger: logger}
}

// Setup ensures the configured define symbol, then injects
func (i *Injector) Setup(opts Options) (*Result, error) {
	added := false
	if opts.DefineSymbol != "" {
		var err error
		added, err = i.EnsureDefineSymbol(opts.DefineGroup, opts.DefineSymbol)
		if err != nil {
			return nil, err
		}
	}

	res, err := i.Inject(opts)
	if err != nil {
		return nil, err
	}
	res.DefineAdded = added
	return res, nil
}

// EnsureDefineSymbol adds symbol to group's scripting define symbols
func (i *Injector) EnsureDefineSymbol(group, symbol string) (bool, error) {
	added, err := i.host.EnsureDefineSymbol(group, symbol)
	if err != nil {
		return false, errors.WithStep(err, "define_symbol")
	}
	if added {
		i.logger.Info("added scripting define symbol", zap.String("symbol", symbol), zap.String("group", group))
	} else {
		i.logger.Info("define symbol already present", zap.String("symbol", symbol), zap.String("group", group))
	}
	return added, nil
}

// Inject opens the enabled scene at opts.SceneIndex, adds a root-level
// object carrying the script's type and saves the scene. The type is
// resolved before the scene is touched, so a failed lookup leaves the scene
// unmodified.
func (i *Injector) Inject(opts Options) (*Result, error) {
	name := ScriptName(opts.Script)
	if name == "" {
		return nil, errors.New(errors.ConfigMissing, "script", "no script to attach").AtStep("read_inputs")
	}
	objectName := opts.ObjectName
	if objectName == "" {
		objectName = DefaultObjectName
	}
	i.logger.Info("injecting script", zap.String("script", name), zap.Int("scene_index", opts.SceneIndex))

	path, err := i.SelectScene(opts.SceneIndex)
	if err != nil {
		return nil, err
	}

	t, err := i.host.ResolveType(name)
	if err != nil {
		return nil, errors.WithStep(err, "resolve_type")
	}

	scene, err := i.host.OpenScene(path)
	if err != nil {
		return nil, errors.WithStep(err, "open_scene")
	}
	if err := scene.AddObject(objectName, t); err != nil {
		return nil, errors.WithStep(err, "add_object")
	}
	i.logger.Info("object created",
		zap.String("object", objectName),
		zap.String("type", t.Name),
		zap.String("type_id", t.ID))

	if err := scene.Save(); err != nil {
		return nil, errors.WithStep(err, "save_scene")
	}
	i.logger.Info("scene saved", zap.String("path", scene.Path()))

	return &Result{
		ScenePath:  scene.Path(),
		Type:       t,
		ObjectName: objectName,
	}, nil
}

// SelectScene returns the enabled scene at index
func (i *Injector) SelectScene(index int) (string, error) {
	scenes, err := i.host.EnabledScenes()
	if err != nil {
		return "", errors.WithStep(err, "select_scene")
	}
	if index < 0 || index >= len(scenes) {
		return "", errors.New(errors.RangeError, strconv.Itoa(index),
			"scene index %d is out of range, found %d enabled scenes", index, len(scenes)).AtStep("select_scene")
	}
	i.logger.Info("target scene", zap.String("path", scenes[index]))
	return scenes[index], nil
}
