// Command server runs the authoritative arena simulation: it loads the
// static and hot-reloadable config layers, wires logging/metrics/
// diagnostics, executes init.cmd, and serves the raw TCP game protocol
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bbodi/rustarok-sub001/internal/config"
	"github.com/bbodi/rustarok-sub001/internal/httpapi"
	"github.com/bbodi/rustarok-sub001/internal/logging"
	"github.com/bbodi/rustarok-sub001/internal/logging/sinks"
	"github.com/bbodi/rustarok-sub001/internal/scripting"
	"github.com/bbodi/rustarok-sub001/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "server-conf.toml", "static server configuration")
	balancePath := flag.String("balance", "config-runtime.toml", "hot-reloadable balance configuration")
	initPath := flag.String("init", "", "init script path (defaults to the config's init_script)")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}
	if *initPath == "" {
		*initPath = cfg.InitScript
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zlog.Sync()

	router, err := logging.NewRouter(logging.DefaultConfig(), logging.SystemClock{}, log.Default(), map[string]logging.Sink{
		"console": sinks.NewConsole(zlog),
	})
	if err != nil {
		return fmt.Errorf("init logging router: %w", err)
	}
	defer router.Close(context.Background())

	var balance *config.RuntimeConfig
	balance, err = config.NewRuntimeConfig(*balancePath, func(*config.BalanceConfig) {
		zlog.Info("balance config reloaded", zap.String("path", *balancePath))
	})
	if err != nil {
		zlog.Warn("balance config unavailable, falling back to defaults", zap.Error(err))
		balance = nil
	}

	hub := server.NewHub(router, zlog, balance)

	engine := scripting.NewEngine(hub, zlog)
	defer engine.Close()
	if err := engine.RunInitScript(*initPath); err != nil {
		return fmt.Errorf("run init script: %w", err)
	}

	srv, err := server.NewServer(fmt.Sprintf(":%d", cfg.ServerPort), zlog)
	if err != nil {
		return fmt.Errorf("start tcp server: %w", err)
	}

	diagHandler := httpapi.NewRouter(httpapi.RouterConfig{Source: hub})
	diagSrv := httpapi.NewServer(fmt.Sprintf(":%d", cfg.DiagnosticsPort), diagHandler)
	go func() {
		if err := diagSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error("diagnostics server stopped", zap.Error(err))
		}
	}()
	defer diagSrv.Shutdown()

	zlog.Info("server ready",
		zap.String("game_addr", srv.Addr().String()),
		zap.Int("diagnostics_port", cfg.DiagnosticsPort),
		zap.Int("tick_rate", cfg.TickRate))

	stop := make(chan struct{})
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go server.Run(srv, hub, engine, stop)

	sig := <-shutdownCh
	zlog.Info("received shutdown signal", zap.String("signal", sig.String()))
	close(stop)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}
