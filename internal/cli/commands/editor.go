package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/scenepatch/scenepatch/internal/cli/config"
	"github.com/scenepatch/scenepatch/internal/cli/ui"
	"github.com/scenepatch/scenepatch/internal/editor"
	"github.com/scenepatch/scenepatch/internal/editor/unity"
	"github.com/scenepatch/scenepatch/internal/errors"
)

var (
	editorProject     string
	editorScript      string
	editorIndex       int
	editorObjectName  string
	editorList        bool
	editorSkipDefine  bool
	editorInteractive bool
)

// NewEditorCommand creates the editor command
func NewEditorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editor",
		Short: "Attach a script to an enabled scene of a Unity project",
		Long: `Set up a Unity project for the SDK build.

The editor process:
  1. Add the scripting define symbol (SDK by default) to the iPhone build
     target group, unless it is already present
  2. Pick the enabled build scene at SCENE_INDEX_TO_PATCH
  3. Resolve the script named by SCRIPT_TO_PATCH to its script asset
  4. Create a root-level InjectedObject carrying the script and save the scene

--script and --index replace the environment inputs.`,
		Example: `  # Driven by the environment, as in CI
  SCRIPT_TO_PATCH=Assets/Scripts/SdkBootstrap.cs SCENE_INDEX_TO_PATCH=0 scenepatch editor --project ./unity

  # List the enabled build scenes
  scenepatch editor --project ./unity --list

  # Pick the scene from a list
  scenepatch editor --project ./unity --script SdkBootstrap --interactive`,
		Args: cobra.NoArgs,
		RunE: runEditor,
	}

	cmd.Flags().StringVarP(&editorProject, "project", "p", "", "Unity project root (overrides config)")
	cmd.Flags().StringVar(&editorScript, "script", "", "Script path or name to attach")
	cmd.Flags().IntVar(&editorIndex, "index", 0, "Zero-based index into the enabled build scenes")
	cmd.Flags().StringVar(&editorObjectName, "object-name", "", "Name of the created object")
	cmd.Flags().BoolVar(&editorList, "list", false, "List the enabled build scenes and exit")
	cmd.Flags().BoolVar(&editorSkipDefine, "skip-define", false, "Do not touch the scripting define symbols")
	cmd.Flags().BoolVarP(&editorInteractive, "interactive", "i", false, "Pick the scene from a list when no index is given")

	return cmd
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("project") {
		cfg.Editor.Project = editorProject
	}
	if cmd.Flags().Changed("object-name") {
		cfg.Editor.ObjectName = editorObjectName
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	project, err := unity.Open(cfg.Editor.Project, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if editorList {
		return listScenes(out, project)
	}

	in, err := editorInputs(cmd)
	if err != nil {
		return err
	}
	if !in.HasIndex {
		if !editorInteractive {
			return errors.New(errors.ConfigMissing, config.EnvSceneIndex, "environment variable is not set").AtStep("read_inputs")
		}
		if in.SceneIndex, err = pickScene(project); err != nil {
			return err
		}
	}

	opts := editor.Options{
		Script:       in.Script,
		SceneIndex:   in.SceneIndex,
		ObjectName:   cfg.Editor.ObjectName,
		DefineGroup:  cfg.Editor.DefineGroup,
		DefineSymbol: cfg.Editor.DefineSymbol,
	}
	if editorSkipDefine {
		opts.DefineSymbol = ""
	}

	res, err := editor.NewInjector(project, logger).Setup(opts)
	if err != nil {
		return err
	}

	if opts.DefineSymbol != "" {
		if res.DefineAdded {
			ui.WriteSuccess(out, fmt.Sprintf("Added scripting define symbol '%s' for %s", opts.DefineSymbol, opts.DefineGroup), noColor)
		} else {
			fmt.Fprint(out, ui.Info(fmt.Sprintf("Define symbol '%s' already present for %s", opts.DefineSymbol, opts.DefineGroup), noColor))
		}
	}
	ui.WriteSuccess(out, fmt.Sprintf("%s created and script '%s' attached", res.ObjectName, res.Type.Name), noColor)

	kv := ui.NewKeyValueTable(out, noColor)
	kv.AddRow("Scene", res.ScenePath)
	kv.AddRow("Script", res.Type.Name)
	kv.AddRow("GUID", res.Type.ID)
	kv.Render()
	return nil
}

// editorInputs reads the script and scene index from the flags, falling
// back to the environment
func editorInputs(cmd *cobra.Command) (*config.EditorInputs, error) {
	flags := cmd.Flags()
	if flags.Changed("script") {
		return &config.EditorInputs{
			Script:     editorScript,
			SceneIndex: editorIndex,
			HasIndex:   flags.Changed("index"),
		}, nil
	}

	in, err := config.ReadEditorInputs()
	if err != nil {
		return nil, errors.WithStep(err, "read_inputs")
	}
	if flags.Changed("index") {
		in.SceneIndex, in.HasIndex = editorIndex, true
	}
	return in, nil
}

func listScenes(w io.Writer, project *unity.Project) error {
	scenes, err := project.EnabledScenes()
	if err != nil {
		return err
	}
	table := ui.NewTable(w, []string{"Index", "Scene"}, noColor)
	for i, s := range scenes {
		table.AddRow(strconv.Itoa(i), s)
	}
	table.Render()
	return nil
}

func pickScene(project *unity.Project) (int, error) {
	scenes, err := project.EnabledScenes()
	if err != nil {
		return 0, err
	}
	if len(scenes) == 0 {
		return 0, errors.New(errors.RangeError, project.Root, "no enabled build scenes").AtStep("select_scene")
	}

	var selected int
	prompt := &survey.Select{
		Message: "Select the scene to patch:",
		Options: scenes,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return 0, err
	}
	return selected, nil
}
