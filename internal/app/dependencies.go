package app

import (
	"database/sql"

	"github.com/alarmo/alarmo/internal/config"
	"github.com/alarmo/alarmo/pkg/alarm"
	"github.com/alarmo/alarmo/pkg/caldav"
	"github.com/alarmo/alarmo/pkg/calendar"
	"github.com/alarmo/alarmo/pkg/connection"
	"github.com/alarmo/alarmo/pkg/google"
	"github.com/alarmo/alarmo/pkg/outlook"
	"github.com/alarmo/alarmo/pkg/sync"
	"github.com/alarmo/alarmo/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserRepo       user.Repository
	AlarmRepo      alarm.Repository
	ConnectionRepo connection.Repository

	ProviderRegistry *calendar.Registry
	Retryer          *calendar.Retryer

	SyncReconciler *sync.Reconciler
	SyncService    sync.Service
	SyncHandler    *sync.Handler
	SyncScheduler  *sync.Scheduler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.UserRepo = user.NewRepository(db)
	deps.AlarmRepo = alarm.NewRepository(db)
	deps.ConnectionRepo = connection.NewRepository(db)

	deps.ProviderRegistry = calendar.NewRegistry()
	deps.ProviderRegistry.Register(google.NewProvider())
	deps.ProviderRegistry.Register(outlook.NewProvider())
	deps.ProviderRegistry.Register(caldav.NewAppleProvider())
	deps.ProviderRegistry.Register(caldav.NewCalDAVProvider())

	deps.Retryer = calendar.NewRetryer(cfg.Sync.RetryMaxAttempts, cfg.Sync.RetryBaseDelay)

	deps.SyncReconciler = sync.NewReconciler(deps.AlarmRepo)
	deps.SyncService = sync.NewService(deps.ProviderRegistry, deps.Retryer, deps.SyncReconciler, deps.AlarmRepo, deps.UserRepo)
	deps.SyncHandler = sync.NewHandler(deps.SyncService)
	deps.SyncScheduler = sync.NewScheduler(deps.SyncService, deps.ConnectionRepo)

	return deps
}
