package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/rahul/acadcore/internal/app/controllers"
	appMigrations "github.com/rahul/acadcore/internal/app/migrations"
	appRepos "github.com/rahul/acadcore/internal/app/repositories"
	appRoutes "github.com/rahul/acadcore/internal/app/routes"
	appViews "github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/config"
	"github.com/rahul/acadcore/internal/db"
	"github.com/rahul/acadcore/internal/identity"
	appMiddleware "github.com/rahul/acadcore/internal/middleware"
	"github.com/rahul/acadcore/internal/pkg/helpers"
	"github.com/rahul/acadcore/internal/pkg/logger"
	"github.com/rahul/acadcore/internal/seed"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store                store.Store
	Provider             identity.Provider
	Resolver             *session.Resolver
	Registry             *appViews.Registry
	Repos                *appRepos.Repositories
	AuthController       *appControllers.AuthController
	StudentController    *appControllers.StudentController
	SubjectController    *appControllers.SubjectController
	MarkController       *appControllers.MarkController
	AttendanceController *appControllers.AttendanceController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore builds the record store named by config. For the postgres
// driver it connects, migrates, and wraps the pool; the memory driver needs
// neither. Both paths finish with the seed pass. The returned closer is a
// no-op for the memory driver.
func SetupStore(cfg *config.Config, lgr zerolog.Logger) (store.Store, func(), error) {
	var st store.Store
	closer := func() {}

	switch cfg.Store.Driver {
	case "memory":
		lgr.Info().Msg("Using in-memory store")
		st = store.NewMemoryStore()

	case "postgres":
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}
		dbPool := database.Pool

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			lgr.Error().Err(err).Msg("Failed to ping database")
			dbPool.Close()
			return nil, nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(dbPool)
		if err := migrator.Migrate(context.Background()); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			dbPool.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		st = store.NewPostgresStore(dbPool)
		closer = dbPool.Close

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	if err := seed.CreateDefaultData(context.Background(), st, cfg); err != nil {
		// Log the error but don't necessarily fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return st, closer, nil
}

// BuildDependencies initializes repositories, views, the session resolver,
// and controllers on top of the store.
func BuildDependencies(cfg *config.Config, st store.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: st, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(st)
	deps.Registry = appViews.NewRegistry(deps.Repos)

	identityTimeout := helpers.ParseDuration(cfg.Identity.Timeout, 10*time.Second)
	deps.Provider = identity.NewHTTPProvider(cfg.Identity.BaseURL, cfg.Identity.JWTSecret, identityTimeout)

	deps.Resolver = session.NewResolver(deps.Provider, st)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(cfg.Identity.JWTSecret, deps.Resolver)

	deps.AuthController = appControllers.NewAuthController(deps.Provider, deps.Resolver, deps.Registry)
	deps.StudentController = appControllers.NewStudentController(deps.Registry)
	deps.SubjectController = appControllers.NewSubjectController(deps.Registry)
	deps.MarkController = appControllers.NewMarkController(deps.Registry)
	deps.AttendanceController = appControllers.NewAttendanceController(deps.Registry)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.SubjectController,
		deps.MarkController,
		deps.AttendanceController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
