package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/internal/config"
	"github.com/alarmo/alarmo/internal/database"
)

// Application wires configuration, database, router, scheduler, and
// server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
	deps   *Dependencies
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	deps := BuildDependencies(db, cfg)

	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, deps: deps}, nil
}

// Run starts the sync scheduler and the HTTP server, and blocks.
func (a *Application) Run() error {
	if a.cfg.Sync.Scheduler.Enabled {
		if err := a.deps.SyncScheduler.Start(a.cfg.Sync.Scheduler.Cron); err != nil {
			return err
		}
	}

	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
