// Package httpapi exposes the sync authority as a JSON API. It is a thin
// transport layer: handlers decode, call a service and encode; access
// control beyond JWT identity lives in the services.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/server/changelog"
	"github.com/kevinbuckley/tripwit/internal/server/shares"
	"github.com/kevinbuckley/tripwit/internal/server/uploads"
	"github.com/kevinbuckley/tripwit/internal/server/users"
)

type HTTPServer struct {
	address   string
	logger    logging.Logger
	users     *users.Service
	changes   *changelog.Service
	shares    *shares.Service
	uploads   *uploads.Service
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, us *users.Service, cs *changelog.Service, ss *shares.Service, up *uploads.Service, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		changes:   cs,
		shares:    ss,
		uploads:   up,
		jwtSecret: []byte(secretKey),
	}, nil
}

// Router assembles the chi routing tree. Split out from Run so handler
// tests can drive it through httptest directly.
func (s *HTTPServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Post("/api/devices", s.handleRegister)
	r.Post("/api/sessions", s.handleLogin)
	r.Post("/api/sessions/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/api/changes", s.handlePush)
		r.Get("/api/changes", s.handleChanges)
		r.Get("/api/snapshot", s.handleSnapshot)

		r.Post("/api/shares", s.handleCreateShare)
		r.Get("/api/shares/{token}", s.handleResolveShare)
		r.Post("/api/shares/{token}/accept", s.handleAcceptShare)
		r.Put("/api/shares/{zone}", s.handlePersistShare)
		r.Delete("/api/zones/{zone}", s.handlePurgeZone)

		r.Post("/api/uploads", s.handlePresignUpload)
		r.Get("/api/uploads/*", s.handlePresignDownload)
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
