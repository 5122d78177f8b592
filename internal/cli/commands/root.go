package commands

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scenepatch/scenepatch/internal/cli/config"
	"github.com/scenepatch/scenepatch/internal/cli/logging"
	"github.com/scenepatch/scenepatch/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	// Global flags
	configFile string
	verbose    bool
	noColor    bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scenepatch",
		Short: "Patch game launch scenes during a build pipeline",
		Long: color.CyanString(`scenepatch - launch scene patcher for build pipelines

scenepatch resolves the launch scene named by a project's build settings,
reads the component type attached to the checker scene and injects a node
carrying that component into the launch scene.

Commands:
  • inject   patch the launch scene of a Cocos Creator project
  • editor   attach a script to an enabled scene of a Unity project
  • inspect  list the nodes of a scene file
  • watch    re-run inject whenever settings or scenes change`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./scenepatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInjectCommand())
	rootCmd.AddCommand(NewEditorCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewWatchCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the scenepatch version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			if noColor {
				titleColor.DisableColor()
			}
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "scenepatch version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), ui.PatchError(err, suggestionsOf(err), noColor))
		return err
	}
	return nil
}

// loadConfig loads the configuration named by --config, or scenepatch.yaml
// in the working directory
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}

// suggestError carries "did you mean" candidates to the error printer
type suggestError struct {
	err         error
	suggestions []string
}

func (e *suggestError) Error() string { return e.err.Error() }
func (e *suggestError) Unwrap() error { return e.err }

// withSuggestions attaches the candidates close to target to err
func withSuggestions(err error, target string, candidates []string) error {
	suggestions := ui.Suggest(target, candidates)
	if len(suggestions) == 0 {
		return err
	}
	return &suggestError{err: err, suggestions: suggestions}
}

func suggestionsOf(err error) []string {
	var se *suggestError
	if stderrors.As(err, &se) {
		return se.suggestions
	}
	return nil
}
