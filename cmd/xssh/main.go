package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"xssh/internal/command"
	"xssh/internal/config"
	"xssh/internal/errors"
	"xssh/internal/executor"
	"xssh/internal/inventory"
	"xssh/internal/logging"
	"xssh/internal/output"
	"xssh/internal/progress"
	"xssh/internal/registry"
	"xssh/internal/resolver"
	"xssh/internal/ssh"
	"xssh/internal/stats"

	"github.com/spf13/cobra"
)

var (
	// Build-time variables (set via -ldflags)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global configuration
	cfg *config.Config

	// CLI flags
	debugMode      bool
	verboseMode    bool
	x11Forward     bool
	sshPort        int
	localForward   string
	dynamicForward string
	logFile        string
	massMode       bool
	sudoMode       bool
	sshConfigPath  string
	inventoryPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "xssh [flags] pattern [command...]",
	Short: "Execute a shell command on one or many SSH hosts matched by a pattern",
	Long: `xssh resolves a pattern (optionally user@hostfragment) against the host
aliases declared in your SSH client configuration and executes a command on
every matching host: a single match runs directly, multiple matches fan out
concurrently in mass mode.

Examples:
  # Run on the single host matching "web1"
  xssh admin@web1 uptime

  # Fan out to every host whose alias contains "web"
  xssh --mass web df -h

  # Escalated execution (allocates a PTY)
  xssh --sudo admin@db1 cat /etc/shadow

  # Feed a locally generated file to the remote command
  xssh web1 'wc -l <(ls /tmp)'`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.NewManager().Load()
		if err != nil {
			return errors.NewSetupError("failed to load configuration: %v", err)
		}
		cfg = loaded
		overrideConfigWithFlags(cmd)
		if err := config.Validate(cfg); err != nil {
			return errors.NewSetupError("configuration validation failed: %v", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := args[0]
		tokens := args[1:]

		logger, err := logging.NewLogger(logging.Config{
			Level:  logging.LogLevel(cfg.LogLevel),
			Format: logging.LogFormat(cfg.LogFormat),
			File:   cfg.LogFile,
		})
		if err != nil {
			return errors.NewSetupError("failed to initialize logging: %v", err)
		}
		defer logger.Close()

		dialer := ssh.NewDialer(logger)
		engine := executor.New(dialer, logger)
		reporter := output.NewReporter(os.Stdout, verboseMode)

		opts := runOptions{
			Mass:           massMode,
			Sudo:           sudoMode,
			Verbose:        verboseMode,
			X11:            x11Forward,
			LocalForward:   localForward,
			DynamicForward: dynamicForward,
		}
		return run(cmd.Context(), cfg, pattern, tokens, opts, engine, reporter, logger)
	},
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xssh %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Built: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&verboseMode, "verbose", "v", false, "Print per-host headers and completion progress")
	rootCmd.Flags().BoolVarP(&x11Forward, "x11", "X", false, "Request X11 forwarding")
	rootCmd.Flags().IntVarP(&sshPort, "port", "p", 0, "SSH port (default 22)")
	rootCmd.Flags().StringVarP(&localForward, "local-forward", "L", "", "Local port forwarding ([bind_address:]port:host:hostport)")
	rootCmd.Flags().StringVarP(&dynamicForward, "dynamic-forward", "D", "", "Dynamic port forwarding ([bind_address:]port)")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "Write logs to a file in addition to stderr")
	rootCmd.Flags().BoolVar(&massMode, "mass", false, "Allow execution on multiple matching hosts")
	rootCmd.Flags().BoolVar(&sudoMode, "sudo", false, "Execute with sudo on remote hosts (allocates a PTY)")
	rootCmd.Flags().StringVar(&sshConfigPath, "ssh-config", "", "Host-alias registry file (default ~/.ssh/config)")
	rootCmd.Flags().StringVar(&inventoryPath, "inventory", "", "YAML host-inventory overlay merged into the registry")
}

func overrideConfigWithFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("port") {
		cfg.Port = sshPort
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}
	if cmd.Flags().Changed("ssh-config") {
		cfg.SSHConfig = sshConfigPath
	}
	if cmd.Flags().Changed("inventory") {
		cfg.Inventory = inventoryPath
	}
	if debugMode {
		cfg.LogLevel = "debug"
	}
}

// runOptions carries the per-run mode flags into the core flow.
type runOptions struct {
	Mass           bool
	Sudo           bool
	Verbose        bool
	X11            bool
	LocalForward   string
	DynamicForward string
}

// run is the core flow: validate, resolve, build, execute, report. All
// run-scoped validation happens before any network activity.
func run(ctx context.Context, cfg *config.Config, pattern string, tokens []string,
	opts runOptions, engine *executor.Engine, reporter *output.Reporter, logger *logging.Logger) error {

	if opts.Mass && len(tokens) == 0 {
		return errors.NewSetupError("--mass requires a command to be provided")
	}
	if opts.Mass {
		if err := command.ValidateMass(tokens); err != nil {
			return err
		}
	}

	reg, found, err := registry.Load(cfg.SSHConfig)
	if err != nil {
		logger.LogRegistryWarning(cfg.SSHConfig, err)
	} else if !found {
		logger.LogRegistryWarning(cfg.SSHConfig, nil)
	}

	if cfg.Inventory != "" {
		entries, err := inventory.Load(cfg.Inventory)
		if err != nil {
			logger.Warn("inventory overlay skipped", "path", cfg.Inventory, "error", err.Error())
		} else {
			reg.Merge(entries)
		}
	}

	set, err := resolver.Resolve(pattern, reg, opts.Mass)
	if err != nil {
		var ambiguous *errors.AmbiguousHostError
		if stderrors.As(err, &ambiguous) {
			reporter.PrintCandidates(ambiguous.Candidates)
		}
		return err
	}
	logger.LogResolution(pattern, set.User, set.Hosts)

	builder := command.NewBuilder(opts.Sudo)
	defer builder.Cleanup()
	remoteCmd, err := builder.Build(tokens)
	if err != nil {
		return err
	}
	logger.LogCommandBuilt(remoteCmd, opts.Sudo)

	req := executor.Request{
		User:    set.User,
		Command: remoteCmd,
		Sudo:    opts.Sudo,
		Options: ssh.Options{
			Port:           cfg.Port,
			ConnectTimeout: cfg.ConnectTimeout,
			X11:            opts.X11,
			LocalForward:   opts.LocalForward,
			DynamicForward: opts.DynamicForward,
		},
	}

	var results []*ssh.Result
	if len(set.Hosts) > 1 {
		if opts.Verbose {
			engine.SetTracker(progress.NewTracker(len(set.Hosts), os.Stderr, true))
		}
		results = engine.RunFleet(ctx, set.Hosts, req)
		if err := reporter.PrintFleet(results); err != nil {
			logger.Error("failed to render report", "error", err.Error())
		}
	} else {
		result := engine.RunSingle(ctx, set.Hosts[0], req)
		if err := reporter.PrintResult(result); err != nil {
			logger.Error("failed to render report", "error", err.Error())
		}
		results = []*ssh.Result{result}
	}

	return stats.Aggregate(results).Err()
}

// getExitCode maps the run outcome onto the process exit code:
//   - 0: every host succeeded
//   - 1: usage, ambiguity, restricted-command, or other validation errors
//   - worst per-host exit code when remote executions failed
func getExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fleetErr *errors.FleetError
	if stderrors.As(err, &fleetErr) && fleetErr.WorstExit > 0 {
		return fleetErr.WorstExit
	}
	return 1
}
