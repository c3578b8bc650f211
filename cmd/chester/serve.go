package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cheshirelabs/chester/pkg/config"
	"github.com/cheshirelabs/chester/pkg/events"
	"github.com/cheshirelabs/chester/pkg/ipcserver"
	"github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/metrics"
	"github.com/cheshirelabs/chester/pkg/pipeline"
	"github.com/cheshirelabs/chester/pkg/runner"
	"github.com/cheshirelabs/chester/pkg/state"
	"github.com/cheshirelabs/chester/pkg/testsindex"
	"github.com/cheshirelabs/chester/pkg/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chester daemon",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to the chester YAML configuration file")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := log.Level(cfg.LogLevel)
	log.Init(log.Config{Level: logLevel, JSONOutput: cfg.LogJSON})
	serveLog := log.WithComponent("serve")

	bus := events.NewBus()
	st := state.New(bus.Publisher())

	idx := testsindex.New(cfg.ListTestsCmd, st.Reader())
	cov, err := runner.NewCoverage(cfg.CoverageCmd)
	if err != nil {
		return fmt.Errorf("build coverage runner: %w", err)
	}

	w, err := watcher.New(cfg.IgnoredPaths, watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("build watcher: %w", err)
	}

	checkShell := pipeline.NewCheckShell(runner.Check{Cmd: cfg.CheckCmd}, st.Writer(), st.Reader(), bus)
	testsShell := pipeline.NewTestsShell(runner.Tests{Cmd: cfg.TestsCmd}, st.Writer(), st.Reader(), bus)
	testsIndexShell := pipeline.NewTestsIndexShell(idx, st.Reader(), bus)
	coverageShell := pipeline.NewCoverageShell(cov, st.Writer(), st.Reader(), bus)
	watcherShell := pipeline.NewChangeWatcherShell(w, st.Reader(), bus.Publisher())

	p := pipeline.New(watcherShell, checkShell, testsShell, testsIndexShell, coverageShell)
	p.Start()

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry, st.Reader(), idx)
	collector.Start()

	metricsServer := metrics.NewServer(registry)
	metricsErrCh := make(chan error, 1)
	go func() { metricsErrCh <- metricsServer.Start(cfg.MetricsAddr) }()

	ipc := ipcserver.NewServer(st.Reader(), st.Writer(), cfg.SocketPath())
	ipcErrCh := make(chan error, 1)
	go func() { ipcErrCh <- ipc.Start() }()

	if cfg.RepoRoot != "" {
		if err := st.Writer().SetRepoRoot(cfg.RepoRoot); err != nil {
			return fmt.Errorf("set initial repo root: %w", err)
		}
	}

	serveLog.Info().
		Str("repo_root", cfg.RepoRoot).
		Str("socket", cfg.SocketPath()).
		Str("metrics_addr", cfg.MetricsAddr).
		Msg("chester started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		serveLog.Info().Msg("shutting down")
	case err := <-metricsErrCh:
		serveLog.Error().Err(err).Msg("metrics server exited")
	case err := <-ipcErrCh:
		serveLog.Error().Err(err).Msg("ipc server exited")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p.Stop()
	collector.Stop()
	_ = metricsServer.Shutdown(ctx)
	_ = ipc.Shutdown(ctx)

	serveLog.Info().Msg("shutdown complete")
	return nil
}
