package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"GoStem/internal/analysis"
	"GoStem/internal/config"
	"GoStem/internal/logging"
	"GoStem/internal/stats"
)

// flagKeys maps command line flags to config keys. Flags are bound for
// the command being executed only, so several subcommands can share a key.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"analyzer":   "analysis.analyzer",
	"stopwords":  "analysis.stopwords",
	"normalize":  "analysis.normalize",
	"corpus":     "corpus.dir",
	"index":      "index.dir",
	"workers":    "index.workers",
	"verify":     "index.verify",
	"limit":      "search.max_results",
	"timeout":    "search.timeout",
	"addr":       "server.addr",
	"cors":       "server.cors",
	"debug":      "server.debug",
}

// app is the state shared by subcommands once the config is loaded.
type app struct {
	v          *viper.Viper
	configPath string

	cfg      *config.Config
	logger   *slog.Logger
	promReg  *prometheus.Registry
	metrics  *stats.Metrics
	registry *analysis.Registry
}

// NewRootCommand creates the gostem command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "gostem",
		Short:         "Russian tokenizer, stemmer and boolean search engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./gostem.yaml or $HOME/gostem.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "json", "log format: json or text")

	root.AddCommand(
		newTokenizeCommand(a),
		newFreqCommand(a),
		newIndexCommand(a),
		newSearchCommand(a),
		newServeCommand(a),
		newCheckCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	a.cfg = cfg
	a.logger = logger
	a.promReg = prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		a.metrics = stats.MustNewMetrics(a.promReg)
	}
	a.registry = analysis.NewRegistry(analysis.Options{
		StopWords: cfg.Analysis.StopWords,
		Normalize: cfg.Analysis.Normalize,
		OnStem:    a.onStem(),
	})
	return nil
}

func (a *app) onStem() func(analysis.Steps) {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.ObserveStem
}

// analyzer returns the configured analyzer and its name.
func (a *app) analyzer() (analysis.Analyzer, string, error) {
	name := a.cfg.Analysis.Analyzer
	an, err := a.registry.Get(name)
	if err != nil {
		return nil, "", err
	}
	return an, name, nil
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("analyzer", analysis.AnalyzerRussian, "analyzer: russian, lowercase, snowball")
	cmd.Flags().Bool("stopwords", false, "drop Russian and English stop words")
	cmd.Flags().Bool("normalize", false, "apply NFC normalization before tokenizing")
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gostem %s\n", Version)
			return err
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			if a.cfg.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.cfg.File)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
