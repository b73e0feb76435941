package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"netmigration/widcollector/config"
	"netmigration/widcollector/helpers"
	"netmigration/widcollector/internal"
	"netmigration/widcollector/internal/browser"
	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/collector/wid"
	"netmigration/widcollector/internal/sources"
	"netmigration/widcollector/logger"
	"netmigration/widcollector/services/cache"
)

var (
	sourceName string
	visible    bool
	timeout    time.Duration
	jsonOutput bool

	cfg *config.Config
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&sourceName, "source", sources.WID, "Collector to use ("+strings.Join(sources.Names(), "|")+").")
	flags.BoolVar(&visible, "visible", false, "Show the browser window instead of running headless.")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the whole command after this long (0 disables).")
	flags.BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables.")
}

var rootCmd = &cobra.Command{
	Use:   "widcollector [service_id]",
	Short: "widcollector reads service provisioning records from the WID portal.",
	Long: "Without arguments it only tests the connection to the portal.\n" +
		"With a service id it searches the service and prints the collected record.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadConfig()
		if visible {
			cfg.HeadlessBrowser = false
		}
		logger.InitWithWriter(os.Stderr, logger.ParseLevel(cfg.LogLevel))
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := newCollector()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return testConnection(ctx, cmd, c)
		}

		rec, found, err := sources.Lookup(ctx, c, args[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(cmd.OutOrStdout(), "Service %s not found in %s\n", args[0], c.Name())
			return nil
		}
		return printRecord(cmd.OutOrStdout(), rec)
	},
}

// ExecuteContext runs the CLI and exits non-zero on failure
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// newDeps wires the optional services. An unreachable cache is switched off.
func newDeps() internal.Dependencies {
	deps := internal.Dependencies{Launcher: browser.NewLauncher()}

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Record cache disabled")
		} else {
			deps.Cache = mc
		}
	}
	return deps
}

func newCollector() (collector.Collector, error) {
	return sources.New(sourceName, cfg, newDeps())
}

func testConnection(ctx context.Context, cmd *cobra.Command, c collector.Collector) error {
	out := cmd.OutOrStdout()
	target := cfg.DataDir
	base := c
	if cached, ok := c.(*collector.Cached); ok {
		base = cached.Unwrap()
	}
	if _, portal := base.(*wid.Collector); portal {
		target = helpers.Host(cfg.WIDBaseURL)
		status, err := helpers.Probe(ctx, cfg.WIDBaseURL)
		if err != nil {
			return fmt.Errorf("portal unreachable: %w", err)
		}
		logger.ForCollector(c.Name()).Debug().Int("status", status).Msg("Portal answered")
	}

	err := collector.WithSession(ctx, c, func(ctx context.Context, c collector.Collector) error {
		fmt.Fprintf(out, "Connected to %s (%s)\n", c.Name(), target)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Disconnected")
	return nil
}
