package main

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/internal/config"
	"github.com/Carmen-Shannon/oxy-gltf/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "gltfinspect",
		Short:        "Inspect, load and convert glTF 2.0 assets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML or TOML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFile, "log-file", "", "Also write logs to this file")

	root.AddCommand(
		a.infoCommand(),
		a.loadCommand(),
		a.packCommand(),
		a.unpackCommand(),
	)
	return root
}

// setup layers the config file and flags and initializes logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.LogFile = a.logFile
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Log
	a.log.Debug("Configuration loaded",
		zap.String("config", a.configPath),
		zap.String("level", cfg.Logging.Level),
		zap.Int("workers", cfg.Loader.Workers),
	)
	return nil
}

func (a *app) newLoader(extra ...loader.FileLoaderBuilderOption) loader.FileLoader {
	return loader.NewFileLoader(append(a.cfg.LoaderOptions(a.log), extra...)...)
}

// outputPath returns out, or in with its extension replaced by ext when out is empty.
func outputPath(in, out, ext string) string {
	if out != "" {
		return out
	}
	base := in[:len(in)-len(filepath.Ext(in))]
	return base + ext
}

func rootURL(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir + string(filepath.Separator)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
