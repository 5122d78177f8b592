package commands

import (
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/scenepatch/scenepatch/internal/cli/config"
	"github.com/scenepatch/scenepatch/internal/cli/ui"
	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/patch"
)

var (
	injectProject     string
	injectAnchor      string
	injectCheckerNode string
	injectName        string
	injectSkipPatched bool
	injectInteractive bool
)

// NewInjectCommand creates the inject command
func NewInjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Inject the checker component into the launch scene",
		Long: `Patch the launch scene of a Cocos Creator project.

The inject process:
  1. Resolve uuid - read startScene from the build settings and find the scene
     whose .meta sidecar carries that uuid
  2. Load the launch scene and the checker scene
  3. Extract the component type attached to the checker node
  4. Locate the anchor node in the launch scene
  5. Append a node carrying that component under the anchor and save

The scene is written only when every step succeeds. Every run appends a new
node; with --skip-if-patched a launch scene whose anchor already carries the
injected node is left untouched.`,
		Example: `  # Patch the project in the working directory
  scenepatch inject

  # Patch another project and confirm before writing
  scenepatch inject --project ../game --interactive

  # Inject under a different node
  scenepatch inject --anchor UIRoot --checker-node Validator

  # Patch only scenes that do not carry the node yet
  scenepatch inject --skip-if-patched`,
		Args: cobra.NoArgs,
		RunE: runInject,
	}

	cmd.Flags().StringVarP(&injectProject, "project", "p", "", "Project root (overrides config)")
	cmd.Flags().StringVar(&injectAnchor, "anchor", "", "Name of the node to inject under")
	cmd.Flags().StringVar(&injectCheckerNode, "checker-node", "", "Name of the checker scene node carrying the component")
	cmd.Flags().StringVar(&injectName, "name", "", "Name of the injected node")
	cmd.Flags().BoolVar(&injectSkipPatched, "skip-if-patched", false, "Leave the launch scene alone when it is already patched")
	cmd.Flags().BoolVarP(&injectInteractive, "interactive", "i", false, "Confirm before the launch scene is modified")

	return cmd
}

func runInject(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyPatchFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	opts := patchOptions(cfg)
	if injectInteractive {
		opts.Confirm = confirmPatch
	}

	p := patch.New(opts, logger)
	p.OnTransition(func(s patch.State) {
		if s != patch.StateDone && s != patch.StateSkipped && s != patch.StateFailed {
			ui.WriteStep(out, s.String(), noColor)
		}
	})

	res, err := p.Run()
	if err != nil {
		if stderrors.Is(err, patch.ErrDeclined) {
			fmt.Fprint(out, ui.Info("Patch declined, launch scene left untouched", noColor))
			return nil
		}
		return patchFailure(err, cfg, res)
	}

	writeSummary(out, res)
	return nil
}

// applyPatchFlags overrides config values with the flags given on the
// command line
func applyPatchFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("project") {
		cfg.Project = injectProject
	}
	if flags.Changed("anchor") {
		cfg.Anchor = injectAnchor
	}
	if flags.Changed("checker-node") {
		cfg.Checker.Node = injectCheckerNode
	}
	if flags.Changed("name") {
		cfg.InjectedName = injectName
	}
	if flags.Changed("skip-if-patched") {
		cfg.SkipPatched = injectSkipPatched
	}
}

func patchOptions(cfg *config.Config) patch.Options {
	return patch.Options{
		SettingsPath:  cfg.SettingsPath(),
		AssetsDir:     cfg.AssetsPath(),
		SceneExt:      cfg.SceneExt,
		CheckerDir:    cfg.CheckerDir(),
		CheckerSuffix: cfg.Checker.Suffix,
		CheckerNode:   cfg.Checker.Node,
		Anchor:        cfg.Anchor,
		InjectedName:  cfg.InjectedName,
		SkipPatched:   cfg.SkipPatched,
	}
}

// patchFailure attaches name suggestions to a failed name lookup
func patchFailure(err error, cfg *config.Config, res *patch.Result) error {
	if len(res.Candidates) == 0 {
		return err
	}
	switch errors.StepOf(err) {
	case patch.StateLocateAnchor.String():
		return withSuggestions(err, cfg.Anchor, res.Candidates)
	case patch.StateExtractComponentType.String():
		return withSuggestions(err, cfg.Checker.Node, res.Candidates)
	}
	return err
}

func confirmPatch(res *patch.Result) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Inject %s under node %d of %s?", res.ComponentType, res.AnchorIndex, filepath.Base(res.LaunchScene)),
		Default: true,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func writeSummary(w io.Writer, res *patch.Result) {
	if res.AlreadyPatched {
		ui.WriteSuccess(w, fmt.Sprintf("%s already carries %s, nothing to do", filepath.Base(res.LaunchScene), res.ComponentType), noColor)
	} else {
		ui.WriteSuccess(w, fmt.Sprintf("Injected %s into %s", res.ComponentType, filepath.Base(res.LaunchScene)), noColor)
	}

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Start scene", res.StartUUID)
	kv.AddRow("Launch scene", res.LaunchScene)
	kv.AddRow("Checker scene", res.CheckerScene)
	kv.AddRow("Component", res.ComponentType)
	kv.AddRow("Anchor", strconv.Itoa(res.AnchorIndex))
	kv.AddRow("Node", strconv.Itoa(res.NodeIndex))
	kv.AddRow("Component index", strconv.Itoa(res.ComponentIndex))
	kv.Render()
}
