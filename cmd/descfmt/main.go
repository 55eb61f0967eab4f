// Package main provides the descfmt command-line tool, which turns game event
// descriptions into typed content blocks and renders them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hsrcal/internal/config"
	"hsrcal/internal/formatter"
	"hsrcal/internal/logger"
	"hsrcal/internal/normalizer"
)

var version = "0.1.0"

// app carries the state shared by every subcommand.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	trace bool
	norm  *normalizer.Normalizer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "descfmt",
		Short: "Event description formatter",
		Long: `descfmt classifies the lines of game event descriptions into typed
blocks (section headers, bullets, notes, requirements, contract items)
and renders them as JSON, Markdown, HTML, aligned text or a terminal preview.

Example:
  descfmt parse description.txt
  descfmt render --format markdown description.txt
  descfmt events --source official`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML configuration file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every rule decision at debug level")

	rootCmd.AddCommand(normalizeCmd(a))
	rootCmd.AddCommand(parseCmd(a))
	rootCmd.AddCommand(renderCmd(a))
	rootCmd.AddCommand(checkCmd(a))
	rootCmd.AddCommand(verifyCmd(a))
	rootCmd.AddCommand(eventsCmd(a))

	return rootCmd
}

// setup loads the configuration and logger. An explicit --config must load;
// the default path is used only when it exists.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	trace, _ := cmd.Flags().GetBool("trace")

	if configPath == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			configPath = config.DefaultPath
		}
	}

	a.cfg = config.Default()

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}

		a.cfg = cfg
	}

	if logLevel == "" {
		logLevel = a.cfg.Formatter.Logging.Level
	}

	a.log = logger.NewLoggerTo(cmd.ErrOrStderr(), logLevel)
	a.trace = trace || a.cfg.Features.TraceRules

	if trace {
		a.log.SetLevel("debug")
	}

	a.log.Debug("configuration loaded", "path", configPath, "config", a.cfg.String())

	return nil
}

// newParser builds a parser, wiring rule traces to the debug log when enabled.
func (a *app) newParser() *formatter.Parser {
	opts := []formatter.Option{formatter.WithNormalizer(a.lineNormalizer())}
	if !a.trace {
		return formatter.NewParser(opts...)
	}

	return formatter.NewParser(append(opts, formatter.WithTrace(func(t formatter.Trace) {
		a.log.Debug("rule matched",
			"line", t.Line,
			"grammar", t.Grammar,
			"rule", t.Rule,
			"reason", t.Reason,
			"kind", t.Kinds,
			"section", t.Section,
		)
	}))...)
}

// lineNormalizer returns the normalizer shared by the parser and the block check.
func (a *app) lineNormalizer() *normalizer.Normalizer {
	if a.norm == nil {
		a.norm = normalizer.New()
	}

	return a.norm
}

// readInput reads the named file, or stdin for no argument or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	return string(data), nil
}

// errCheckFailed is returned when check finds errors (or warnings in strict mode).
var errCheckFailed = errors.New("check failed")
