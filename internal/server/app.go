// Package server initializes and runs the sync authority: it wires the
// repositories and services together, handles graceful shutdown and
// starts the HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/server/changelog"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/server/httpapi"
	"github.com/kevinbuckley/tripwit/internal/server/shared/db"
	"github.com/kevinbuckley/tripwit/internal/server/shares"
	"github.com/kevinbuckley/tripwit/internal/server/uploads"
	"github.com/kevinbuckley/tripwit/internal/server/users"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	userService   *users.Service
	changeService *changelog.Service
	shareService  *shares.Service
	uploadService *uploads.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(m.Users(), m.RefreshTokens(), c)
	ss := shares.NewService(m.Shares(), c, logger)
	cs := changelog.NewService(m.ChangeLog(), ss, c, logger)
	up := uploads.NewService(c)

	return &App{
		config:        c,
		logger:        logger,
		userService:   us,
		changeService: cs,
		shareService:  ss,
		uploadService: up,
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.changeService, app.shareService, app.uploadService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
