// Command appshortcuts discovers the static app shortcuts declared by
// Android packages stored on disk.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ochairo/appshortcuts/internal/config"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/external-adapters/zaplog"
)

// app holds the state shared by all subcommands
type app struct {
	// flags
	configFile  string
	verbose     bool
	packagesDir string
	output      string

	cfg    *config.Config
	logger *zaplog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "appshortcuts",
		Short: "Discover the static app shortcuts of Android packages",
		Long: `appshortcuts reads the shortcuts Android packages declare through
android.app.shortcuts meta-data and lists the ones that target exported
activities.

Packages are .apk files or unpacked directories holding a package.yml
descriptor, found below the packages directory.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/appshortcuts/appshortcuts.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.packagesDir, "packages-dir", "", "directory holding the packages (overrides packages_dir)")
	flags.StringVarP(&a.output, "output", "o", "", "output format: text or json (overrides output.format)")

	root.AddCommand(
		newScanCmd(a),
		newListCmd(a),
		newPackagesCmd(a),
		newVerifyCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, used, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.configFile})
	if err != nil {
		return err
	}
	if a.packagesDir != "" {
		cfg.PackagesDir = a.packagesDir
	}
	if a.output != "" {
		cfg.Output.Format = a.output
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := zaplog.New(zaplog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	if used != "" {
		logger.Debug("Loaded configuration", interfaces.F("path", used))
	}
	return nil
}
