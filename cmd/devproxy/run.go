package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/aniketpal07/devproxy/pkg/admission"
	"github.com/aniketpal07/devproxy/pkg/audit"
	"github.com/aniketpal07/devproxy/pkg/config"
	"github.com/aniketpal07/devproxy/pkg/http1"
	"github.com/aniketpal07/devproxy/pkg/proxy"
	"github.com/aniketpal07/devproxy/pkg/server"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
	"github.com/aniketpal07/devproxy/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the DevProxy server",
	Long: `Start the DevProxy server with the specified configuration.

The server listens on the configured address, parses each request under
the configured limits, and dispatches it by path: /proxy/* is forwarded
to the upstream, /metrics renders Prometheus metrics, everything else is
echoed back.

Examples:
  # Start with default config
  devproxy run

  # Start with custom config
  devproxy run --config /etc/devproxy/config.yaml

  # Override listen address
  devproxy run --listen 0.0.0.0:8889

  # Validate config without starting server
  devproxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address (host:port)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyFlagOverrides(cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		fmt.Println(cfg.String())
		return nil
	}

	log, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
		Writer: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	collector := metrics.NewCollector(metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		store, err := audit.OpenStore(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		recorder = audit.NewRecorder(store, cfg.Audit.BufferSize, log)
		defer recorder.Close()

		scheduler := audit.NewScheduler(store, cfg.Audit.PruneSchedule, cfg.Audit.RetentionDays, log)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("starting audit retention scheduler: %w", err)
		}
		fmt.Printf("✓ Audit log at %s\n", cfg.Audit.Path)
	}

	limits := parserLimits(cfg)
	forwarder := proxy.NewForwarder(cfg.UpstreamAddress(), cfg.Upstream.DialTimeout, log)
	handler := proxy.NewHandler(limits, forwarder, collector, recorder, log)
	controller := admission.NewController(cfg.Server.MaxConnections)

	srv := server.New(cfg, handler, controller, log)

	fmt.Printf("DevProxy v%s\n", Version)
	fmt.Printf("✓ Listening on %s\n", cfg.ListenAddress())
	fmt.Printf("✓ Forwarding /proxy/* to %s\n", cfg.UpstreamAddress())
	fmt.Printf("✓ Metrics at http://%s/metrics\n", cfg.ListenAddress())
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// applyFlagOverrides lets command-line flags win over file and
// environment settings.
func applyFlagOverrides(cfg *config.Config) error {
	if runFlags.listenAddress != "" {
		host, port, err := net.SplitHostPort(runFlags.listenAddress)
		if err != nil {
			return fmt.Errorf("invalid --listen address %q: %w", runFlags.listenAddress, err)
		}
		cfg.Server.Host = host
		if _, err := fmt.Sscanf(port, "%d", &cfg.Server.Port); err != nil {
			return fmt.Errorf("invalid --listen port %q: %w", port, err)
		}
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return nil
}

// parserLimits converts the config section into the parser's limits.
func parserLimits(cfg *config.Config) http1.Limits {
	return http1.Limits{
		MaxRequestLineBytes: cfg.Limits.MaxRequestLineBytes,
		MaxHeaderLineBytes:  cfg.Limits.MaxHeaderLineBytes,
		MaxHeaderCount:      cfg.Limits.MaxHeaderCount,
		MaxTotalHeaderBytes: cfg.Limits.MaxTotalHeaderBytes,
		MaxBodyBytes:        cfg.Limits.MaxBodyBytes,
		RequestLineTimeout:  cfg.Limits.RequestLineTimeout,
		HeaderTimeout:       cfg.Limits.HeaderTimeout,
		BodyTimeout:         cfg.Limits.BodyTimeout,
	}
}
