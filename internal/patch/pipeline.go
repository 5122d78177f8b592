// Package patch runs the launch scene patch end to end: resolve the launch
// scene from the build settings, read the component type off the checker
// scene, inject a node carrying that component under the anchor node, and
// write the scene back.
package patch

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/scenepatch/scenepatch/internal/assets"
	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/scene"
)

// ErrDeclined is returned when the confirmation hook refuses the patch
var ErrDeclined = stderrors.New("patch declined")

// State is a step of the patch run
type State int

const (
	StateResolveUUID State = iota
	StateLoadLaunchScene
	StateLoadCheckerScene
	StateExtractComponentType
	StateLocateAnchor
	StateMutate
	StatePersist
	StateDone
	StateSkipped
	StateFailed
)

var stateNames = [...]string{
	StateResolveUUID:          "resolve_uuid",
	StateLoadLaunchScene:      "load_launch_scene",
	StateLoadCheckerScene:     "load_checker_scene",
	StateExtractComponentType: "extract_component_type",
	StateLocateAnchor:         "locate_anchor",
	StateMutate:               "mutate",
	StatePersist:              "persist",
	StateDone:                 "done",
	StateSkipped:              "skipped",
	StateFailed:               "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Options configures a patch run
type Options struct {
	SettingsPath  string // build settings file holding startScene
	AssetsDir     string // asset tree searched for the launch scene
	SceneExt      string // primary scene extension, e.g. ".fire"
	CheckerDir    string
	CheckerSuffix string
	CheckerNode   string
	Anchor        string
	InjectedName  string

	// SkipPatched ends the run in StateSkipped, without writing, when the
	// anchor already carries an injected node with the same component type.
	// By default every run injects.
	SkipPatched bool

	// Confirm, when set, is asked before the launch scene is mutated
	Confirm func(*Result) (bool, error)

	// NewID generates the injected node's _id; scene.AutoGenID when nil
	NewID func() string
}

// Result describes a patch run
type Result struct {
	State          State
	StartUUID      string
	LaunchScene    string
	CheckerScene   string
	ComponentType  string
	AnchorIndex    int
	NodeIndex      int
	ComponentIndex int

	// AlreadyPatched is set when a SkipPatched run found a previous
	// injection and left the scene untouched
	AlreadyPatched bool

	// Candidates holds the node names of the scene searched by a failed
	// name lookup
	Candidates []string
}

// Pipeline sequences the patch steps. Every step either advances to the
// next state or moves the run to StateFailed; nothing is retried.
type Pipeline struct {
	opts         Options
	logger       *zap.Logger
	resolver     *assets.Resolver
	onTransition func(State)
}

// New creates a pipeline
func New(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.InjectedName == "" {
		opts.InjectedName = scene.DefaultInjectedName
	}
	if opts.NewID == nil {
		opts.NewID = scene.AutoGenID
	}
	return &Pipeline{
		opts:     opts,
		logger:   logger,
		resolver: assets.NewResolver(opts.SceneExt, logger),
	}
}

// OnTransition registers a callback invoked on entry to every state
func (p *Pipeline) OnTransition(fn func(State)) {
	p.onTransition = fn
}

// run carries the data handed from one step to the next
type run struct {
	res         *Result
	launch      *scene.Graph
	checker     *scene.Graph
	checkerNode int
}

// Run executes the patch. The returned Result is never nil; on failure its
// State is StateFailed and the error names the failing step. StateDone is
// only reached through StatePersist.
func (p *Pipeline) Run() (*Result, error) {
	r := &run{res: &Result{
		State:          StateResolveUUID,
		AnchorIndex:    -1,
		NodeIndex:      -1,
		ComponentIndex: -1,
	}}

	for r.res.State != StateDone && r.res.State != StateSkipped {
		state := r.res.State
		p.enter(state)

		next, err := p.step(r)
		if err != nil {
			r.res.State = StateFailed
			p.enter(StateFailed)
			p.logger.Debug("patch failed", zap.Stringer("step", state), zap.Error(err))
			if stderrors.Is(err, ErrDeclined) {
				return r.res, err
			}
			return r.res, errors.WithStep(err, state.String())
		}
		r.res.State = next
	}

	p.enter(r.res.State)
	return r.res, nil
}

func (p *Pipeline) enter(s State) {
	p.logger.Debug("state", zap.String("state", s.String()))
	if p.onTransition != nil {
		p.onTransition(s)
	}
}

func (p *Pipeline) step(r *run) (State, error) {
	res := r.res

	switch res.State {
	case StateResolveUUID:
		uuid, err := assets.ReadStartScene(p.opts.SettingsPath)
		if err != nil {
			return StateFailed, err
		}
		res.StartUUID = uuid

		path, err := p.resolver.Resolve(p.opts.AssetsDir, uuid)
		if err != nil {
			return StateFailed, err
		}
		res.LaunchScene = path
		p.logger.Info("found launch scene", zap.String("uuid", uuid), zap.String("path", path))
		return StateLoadLaunchScene, nil

	case StateLoadLaunchScene:
		g, err := scene.Load(res.LaunchScene)
		if err != nil {
			return StateFailed, err
		}
		r.launch = g
		return StateLoadCheckerScene, nil

	case StateLoadCheckerScene:
		path, err := assets.FindChecker(p.opts.CheckerDir, p.opts.CheckerSuffix)
		if err != nil {
			return StateFailed, err
		}
		g, err := scene.Load(path)
		if err != nil {
			return StateFailed, err
		}
		res.CheckerScene = path
		r.checker = g
		return StateExtractComponentType, nil

	case StateExtractComponentType:
		idx, err := r.checker.FindNodeByName(p.opts.CheckerNode)
		if err != nil {
			res.Candidates = r.checker.Names()
			return StateFailed, err
		}
		typeName, err := r.checker.FirstComponentType(idx)
		if err != nil {
			return StateFailed, err
		}
		r.checkerNode = idx
		res.ComponentType = typeName
		p.logger.Info("extracted component type",
			zap.String("scene", res.CheckerScene),
			zap.String("node", p.opts.CheckerNode),
			zap.String("type", typeName))
		return StateLocateAnchor, nil

	case StateLocateAnchor:
		idx, err := r.launch.FindNodeByName(p.opts.Anchor)
		if err != nil {
			res.Candidates = r.launch.Names()
			return StateFailed, errors.New(errors.AnchorNotFound, p.opts.Anchor, "no node named %q in %s", p.opts.Anchor, res.LaunchScene)
		}
		res.AnchorIndex = idx

		if p.opts.SkipPatched && p.alreadyPatched(r) {
			res.AlreadyPatched = true
			p.logger.Info("launch scene already patched",
				zap.String("path", res.LaunchScene),
				zap.Int("node", res.NodeIndex))
			return StateSkipped, nil
		}
		return StateMutate, nil

	case StateMutate:
		if p.opts.Confirm != nil {
			ok, err := p.opts.Confirm(res)
			if err != nil {
				return StateFailed, err
			}
			if !ok {
				return StateFailed, ErrDeclined
			}
		}
		nodeIdx, compIdx, err := r.launch.InjectComponentNode(res.AnchorIndex, res.ComponentType,
			scene.WithNodeName(p.opts.InjectedName),
			scene.WithIDGenerator(p.opts.NewID))
		if err != nil {
			return StateFailed, err
		}
		res.NodeIndex = nodeIdx
		res.ComponentIndex = compIdx
		return StatePersist, nil

	case StatePersist:
		if err := scene.Save(res.LaunchScene, r.launch); err != nil {
			return StateFailed, err
		}
		p.logger.Info("injected node into launch scene",
			zap.String("path", res.LaunchScene),
			zap.Int("anchor", res.AnchorIndex),
			zap.Int("node", res.NodeIndex),
			zap.Int("component", res.ComponentIndex))
		return StateDone, nil
	}

	panic("patch: no step for state " + res.State.String())
}

// alreadyPatched reports whether the anchor has a child named InjectedName
// whose first component has the extracted type, recording its index.
func (p *Pipeline) alreadyPatched(r *run) bool {
	child, ok := r.launch.FindChild(r.res.AnchorIndex, p.opts.InjectedName)
	if !ok {
		return false
	}
	typeName, err := r.launch.FirstComponentType(child)
	if err != nil || typeName != r.res.ComponentType {
		return false
	}
	n, _ := r.launch.Node(child)
	r.res.NodeIndex = child
	r.res.ComponentIndex = n.Components[0].ID
	return true
}
