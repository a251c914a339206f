// Package server wires storage, services, the HTTP API and the check runner
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/dispatch"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/services"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/workers"
	"github.com/spf13/afero"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	runner *workers.Runner
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(c, afero.NewOsFs(), logger)
}

func newApp(c *config.Config, fs afero.Fs, logger logging.Logger) (*App, error) {
	rm, err := repomanager.NewFileRepositoryManager(fs, c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	creds := services.NewCredentialService(rm, c, logger)
	users := services.NewUserService(rm, creds, logger)
	checks := services.NewCheckService(rm, creds, c, logger)
	d := dispatch.NewDispatcher(creds, users, checks, logger)

	return &App{
		config: c,
		logger: logger,
		server: httpapi.NewServer(c.HTTPAddr, d, logger),
		runner: workers.NewRunner(rm, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a termination signal arrives, or one of
// the components fails. A failing component stops the others.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "data_dir", app.config.DataDir)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.runner.Run(ctx); err != nil {
			app.logger.Error(ctx, "check runner failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
}
