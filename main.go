package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	clts "radarwatch/clients"
	"radarwatch/config"
	"radarwatch/internal/app"
	"radarwatch/internal/tui"
)

func main() {
	// Load config from environment variables
	envConfig := config.Load()

	logger, err := buildLogger(envConfig)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting radarwatch", zap.Bool("isProd", envConfig.IsProd))

	// Create LiveConfig with env config as initial value
	liveConfig := config.NewLiveConfig(envConfig)

	// Merge the optional YAML config file over the env config
	fileManager := config.NewFileManager(logger, os.Getenv(config.EnvConfigFile))
	if fileManager.IsEnabled() {
		logger.Info("loading config file", zap.String("path", fileManager.Path()))
		cfg, err := fileManager.LoadSettings(envConfig)
		if err != nil {
			logger.Warn("failed to load config file, using env/defaults", zap.Error(err))
		} else if cfg != nil {
			if err := liveConfig.Update(cfg); err != nil {
				logger.Warn("failed to apply config file", zap.Error(err))
			}
		}
	} else {
		logger.Info("no config file configured, using env/defaults")
	}

	cfg := liveConfig.Get()

	// Initialize clients
	logger.Info("instantiating clients")
	clients := clts.NewClients(logger, cfg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	runner := app.NewRunner(clients, liveConfig, nil)

	dashboard := tui.NewDashboard(logger, cfg.TUI.Enabled, tui.Controls{
		RequestRefresh: func() { runner.RequestManualCheck(ctx) },
		TogglePlayback: runner.TogglePlayback,
		OpenDetail:     runner.OpenDetail,
		CloseDetail:    runner.CloseDetail,
		Quit:           stop,
	})
	dashboard.BindRunner(runner)

	// SIGHUP re-reads the config file; SIGCONT means the terminal regained
	// us after a suspend, treat it as visibility regained.
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGCONT)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				if !fileManager.IsEnabled() {
					logger.Info("SIGHUP received but no config file configured")
					continue
				}
				if err := fileManager.Reload(envConfig, liveConfig); err != nil {
					logger.Warn("config reload failed", zap.Error(err))
				}
			case syscall.SIGCONT:
				runner.OnVisibilityRegained(ctx)
			}
		}
	}()

	// Whatever ends the run context also tears the UI down.
	go func() {
		<-ctx.Done()
		dashboard.Stop()
	}()

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- runner.Run(ctx)
	}()

	if dashboard != nil {
		if err := dashboard.Run(); err != nil {
			logger.Error("dashboard failed", zap.Error(err))
		}
		// UI gone (quit key or error), wind the rest down too.
		stop()
	}

	if err := <-runnerDone; err != nil {
		logger.Fatal("runner failed", zap.Error(err))
	}
}

// buildLogger returns a production logger. While the TUI owns the terminal,
// log output goes to the configured file instead of stderr.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if !cfg.TUI.Enabled || cfg.TUI.LogFile == "" {
		return zap.NewProduction()
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.TUI.LogFile}
	zcfg.ErrorOutputPaths = []string{cfg.TUI.LogFile}
	return zcfg.Build()
}
