package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"site_blocker/internal"
	"site_blocker/internal/config"
	"site_blocker/internal/controller"
	"site_blocker/internal/gateway"
	"site_blocker/internal/handler"
	"site_blocker/internal/platform"
	"site_blocker/internal/session"
	"site_blocker/internal/timer"
	"site_blocker/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	headless := flag.Bool("headless", false, "run the control API and alarms without the terminal UI")
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	if err := run(*configPath, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logFile := cfg.Logging.File
	if logFile == "" && !headless {
		logFile = filepath.Join(filepath.Dir(cfg.Storage.Path), "site_blocker.log")
	}
	if err := logger.Init(cfg.Logging.Level, logFile, headless); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	lock, err := platform.Acquire(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer lock.Release()

	repo, err := session.NewRepository(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer repo.Close()

	rules, err := gateway.DefaultRuleSet()
	if err != nil {
		return err
	}
	gw := newGateway(cfg.Gateway, rules)

	sched := timer.New(nil)
	defer sched.Stop()

	ctrl := controller.New(repo, gw, sched, controller.Options{
		MaxDuration:  time.Duration(cfg.Session.MaxMinutes * float64(time.Minute)),
		AllowRestart: cfg.Session.AllowRestart,
	}, logger.Log)
	sched.SetHandler(func(name string) {
		if err := ctrl.HandleAlarm(context.Background(), name); err != nil {
			logger.Log.Error("alarm failed", zap.String("alarm", name), zap.Error(err))
		}
	})

	status, err := ctrl.Reconcile(context.Background())
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	logger.Log.Info("site blocker started",
		zap.String("state", string(status.State())),
		zap.String("gateway", gw.Name()),
		zap.String("storage", cfg.Storage.Path),
		zap.String("instance_lock", lock.Addr()),
		zap.Bool("headless", headless),
	)

	var server *http.Server
	serverErrors := make(chan error, 1)
	if cfg.Server.Enabled {
		gin.SetMode(gin.ReleaseMode)
		router := handler.NewRouter(
			handler.NewSessionHandler(ctrl),
			handler.NewHealthHandler(repo, rules.Name),
			cfg.Server.APIKeys,
		)
		server = &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Log.Info("control API listening", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("control API failed", zap.String("addr", server.Addr), zap.Error(err))
				serverErrors <- err
			}
		}()
		defer shutdownServer(server, cfg.Server.ShutdownTimeout)
	}

	if headless {
		return waitForSignal(serverErrors)
	}
	return runUI(ctrl, cfg.Session, rules.Domains, serverErrors)
}

func newGateway(cfg config.GatewayConfig, rules gateway.RuleSet) gateway.Gateway {
	if cfg.Kind == config.GatewayMemory {
		return gateway.NewMemoryGateway(rules.Name)
	}
	return gateway.NewHostsGateway(cfg.HostsPath, rules)
}

func runUI(ctrl internal.Controller, cfg config.SessionConfig, sites []string, serverErrors <-chan error) error {
	m, err := internal.NewModel(ctrl, internal.Defaults{
		BlockMinutes: cfg.DefaultMinutes,
		PauseMinutes: cfg.PauseMinutes,
	}, sites)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			case err := <-serverErrors:
				p.Send(internal.MsgServerError{Err: err})
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func waitForSignal(serverErrors <-chan error) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))
		return nil
	}
}

func shutdownServer(server *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
		if err := server.Close(); err != nil {
			logger.Log.Error("failed to close server", zap.Error(err))
		}
		return
	}
	logger.Log.Info("server stopped gracefully")
}
