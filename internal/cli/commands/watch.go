package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scenepatch/scenepatch/internal/cli/config"
	"github.com/scenepatch/scenepatch/internal/cli/ui"
	"github.com/scenepatch/scenepatch/internal/patch"
	"github.com/scenepatch/scenepatch/internal/watch"
)

var (
	watchProject string
	watchDelay   time.Duration
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run inject whenever settings or scenes change",
		Long: `Watch the build settings, the checker scenes and the asset tree and
re-run the inject patch after every batch of changes.

The watch command:
  • Runs the patch once on start
  • Watches *.fire, *.meta and the build settings file
  • Waits for a quiet period so a multi-file save triggers one run
  • Skips the write when the launch scene is already patched, whatever
    skip_patched says

Rewriting the launch scene itself triggers one more run, which finds the
injected node and leaves the file alone.`,
		Example: `  # Watch the project in the working directory
  scenepatch watch

  # Watch another project with a longer quiet period
  scenepatch watch --project ../game --delay 1s`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchProject, "project", "p", "", "Project root (overrides config)")
	cmd.Flags().DurationVar(&watchDelay, "delay", watch.DefaultDelay, "Quiet period before a batch of changes is handled")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("project") {
		cfg.Project = watchProject
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	run := func(files []string) error {
		if len(files) > 0 {
			logger.Info("change detected", zap.Strings("files", files))
		}
		opts := patchOptions(cfg)
		opts.SkipPatched = true
		res, err := patch.New(opts, logger).Run()
		reportRun(out, res, err)
		return nil
	}

	fw, err := watch.NewFileWatcher(watchOptions(cfg), run, logger)
	if err != nil {
		return err
	}

	_ = run(nil)

	if err := fw.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	banner := color.New(color.FgCyan, color.Bold)
	hint := color.New(color.FgYellow)
	if noColor {
		banner.DisableColor()
		hint.DisableColor()
	}
	fmt.Fprintln(out)
	banner.Fprintf(out, "Watching %s\n", cfg.Project)
	hint.Fprintln(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out)

	select {
	case <-sigChan:
	case <-cmd.Context().Done():
	}

	fmt.Fprintln(out, "\nShutting down...")
	return fw.Stop()
}

// watchOptions lists the files and directories a patch run reads
func watchOptions(cfg *config.Config) watch.Options {
	return watch.Options{
		Targets: []string{
			cfg.SettingsPath(),
			cfg.CheckerDir(),
			cfg.AssetsPath(),
		},
		Patterns: []string{
			"*" + cfg.SceneExt,
			"*.meta",
			filepath.Base(cfg.SettingsFile),
		},
		Ignored: []string{"*.swp", "*.swo", "*~"},
		Delay:   watchDelay,
	}
}

// reportRun prints the outcome of one patch run
func reportRun(w io.Writer, res *patch.Result, err error) {
	stamp := time.Now().Format("15:04:05")
	switch {
	case err == nil && res.AlreadyPatched:
		fmt.Fprint(w, ui.Info(fmt.Sprintf("[%s] %s already patched", stamp, filepath.Base(res.LaunchScene)), noColor))
	case err == nil:
		ui.WriteSuccess(w, fmt.Sprintf("[%s] injected %s into %s (node %d)", stamp, res.ComponentType, filepath.Base(res.LaunchScene), res.NodeIndex), noColor)
	default:
		fmt.Fprint(w, ui.PatchError(err, nil, noColor))
	}
}
