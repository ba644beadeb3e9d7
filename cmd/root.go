package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/modernize/normalize"
)

const defaultTimeout = 5 * time.Minute

// ErrRewritesFound is returned by check when legacy usage is present.
var ErrRewritesFound = errors.New("legacy usage found")

var (
	cfgFile     string
	timeout     time.Duration
	verbose     bool
	ignoreRules string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "modernize [paths...]",
	Short:            "modernize - rewrite legacy OpenAI SDK usage to the current API",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: modernize [path1 path2 ...] => behaves like the check subcommand
		return checkCmd.RunE(checkCmd, args)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrRewritesFound) {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", normalize.DefaultConfigFile, "Configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log rule diagnostics")
	rootCmd.PersistentFlags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(stdinCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

// newNormalizer builds a normalizer from the configuration file and the
// --ignore flag.
func newNormalizer() (*normalize.Normalizer, error) {
	config, err := normalize.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if ignoreRules != "" {
		for _, rule := range strings.Split(ignoreRules, ",") {
			if rule = strings.TrimSpace(rule); rule != "" {
				config.Rules[rule] = normalize.RuleOff
			}
		}
	}
	return normalize.NewFromConfig(config, normalize.WithLogger(logger))
}
