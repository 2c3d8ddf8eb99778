// Package cli implements the tripwit command-line client: a thin cobra
// layer over the replica store, syncer and sharing coordinator.
package cli

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kevinbuckley/tripwit/internal/client/config"
	"github.com/kevinbuckley/tripwit/internal/client/policy"
	"github.com/kevinbuckley/tripwit/internal/client/remote"
	"github.com/kevinbuckley/tripwit/internal/client/sharing"
	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/client/syncer"
	"github.com/kevinbuckley/tripwit/internal/filex"
	"github.com/kevinbuckley/tripwit/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *store.Store
	authority *remote.HTTPAuthority
	syncer    *syncer.Syncer
	sharing   *sharing.Coordinator
	policy    *policy.Policy
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}
	c.DataDir = dataDir

	session, _ := loadSession(dataDir)

	st, err := store.Open(ctx, store.Options{Dir: dataDir, UserID: session.UserID}, logger)
	if err != nil {
		return nil, err
	}

	authority := remote.NewHTTPAuthority(c.ServerURL, c.RequestTimeout)
	authority.SetSession(session)

	sc := syncer.New(st, authority, syncer.Config{Interval: c.SyncInterval}, logger)
	coord := sharing.New(st, authority, sc, sharing.Config{}, logger)

	return &App{
		config:    c,
		logger:    logger,
		store:     st,
		authority: authority,
		syncer:    sc,
		sharing:   coord,
		policy:    policy.New(st, logger),
	}, nil
}

func (a *App) Run() error {
	defer a.store.Close()
	return a.rootCmd().Execute()
}
