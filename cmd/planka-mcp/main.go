// Package main is the entry point for the planka-mcp server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"planka-mcp/internal/backend/planka"
	"planka-mcp/internal/config"
	"planka-mcp/internal/exitcode"
	"planka-mcp/internal/rpc"
	"planka-mcp/internal/tools"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(code)
}

// run parses flags, loads configuration and serves stdin until it ends.
// stdout carries protocol messages only; everything else goes to stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var envFile, logLevel string
	var showVersion, showHelp bool

	flagSet := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&envFile, "env-file", "", "load environment variables from this file (default: .env if present)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides "+config.EnvLogLevel+")")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.BoolVarP(&showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return exitcode.Success
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitcode.UsageError
	}
	if showHelp {
		printHelp(stderr, flagSet)
		return exitcode.Success
	}
	if showVersion {
		fmt.Fprintf(stdout, "%s %s\n", config.AppName, version)
		return exitcode.Success
	}
	if flagSet.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected argument: %s\n", flagSet.Arg(0))
		return exitcode.UsageError
	}

	var level slog.LevelVar
	if logLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(logLevel)); err != nil {
			fmt.Fprintf(stderr, "error: invalid --log-level %q\n", logLevel)
			return exitcode.UsageError
		}
		level.Set(l)
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitcode.ConfigError
	}
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitcode.ConfigError
	}
	if logLevel == "" {
		level.Set(cfg.LogLevel)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: &level}))
	logger.Info("starting "+config.AppName, "version", version, "base_url", cfg.BaseURL.String())

	client := planka.New(cfg, planka.WithLogger(logger))
	srv := rpc.NewServer(tools.DefaultRegistry, client, logger, rpc.Implementation{
		Name:    config.AppName,
		Version: version,
	})

	// The read on stdin cannot be interrupted, so a signal returns without waiting for it.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, stdin, stdout) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped", "error", err)
			return exitcode.ServeError
		}
	case <-ctx.Done():
		logger.Info("interrupted, shutting down")
	}
	return exitcode.Success
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `%[1]s: Planka kanban tools over the Model Context Protocol (stdio).

Reads newline-delimited JSON-RPC 2.0 requests on stdin and writes responses
on stdout. Logs go to stderr.

Usage:
  %[1]s [flags]

Environment:
  %[2]s       Planka server URL (required)
  %[3]s     static API token
  %[4]s     login email or username (when no token is set)
  %[5]s  login password
  %[6]s log level: debug, info, warn, error (default info)

Flags:
`, config.AppName, config.EnvURL, config.EnvToken, config.EnvEmail, config.EnvPassword, config.EnvLogLevel)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
