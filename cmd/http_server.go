package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/wbs-tracker/internal/assignment/postgres"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	auditPostgres "github.com/frahmantamala/wbs-tracker/internal/auditlog/postgres"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/wbs-tracker/internal/auth/postgres"
	"github.com/frahmantamala/wbs-tracker/internal/core/events"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
	"github.com/frahmantamala/wbs-tracker/internal/project"
	projectPostgres "github.com/frahmantamala/wbs-tracker/internal/project/postgres"
	"github.com/frahmantamala/wbs-tracker/internal/task"
	taskPostgres "github.com/frahmantamala/wbs-tracker/internal/task/postgres"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
	"github.com/frahmantamala/wbs-tracker/internal/transport/rest"
	"github.com/frahmantamala/wbs-tracker/internal/transport/swagger"
	"github.com/frahmantamala/wbs-tracker/internal/user"
	userPostgres "github.com/frahmantamala/wbs-tracker/internal/user/postgres"
	"github.com/frahmantamala/wbs-tracker/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Metrics  *metrics.Metrics
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// pending audit writes still need the database
		if err := deps.EventBus.Drain(ctx); err != nil {
			deps.Logger.Error("Event bus drain error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)
	caps := auth.NewRoleCapabilities()

	// audit sink first: every other service records through it
	auditService := auditlog.NewService(auditPostgres.NewAuditLogRepository(deps.Gorm), deps.EventBus, lg, deps.Metrics)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokenGen, cfg.Security.BCryptCost, lg, deps.Metrics)

	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), authService, auditService, caps, lg)
	projectService := project.NewService(projectPostgres.NewProjectRepository(deps.Gorm), auditService, caps, lg)
	progressGuard := auth.NewProgressGuard(auth.NewSQLAssignmentLookup(deps.DB), auth.NewABACPolicy(caps))
	taskService := task.NewService(taskPostgres.NewTaskRepository(deps.Gorm), auditService, progressGuard, cfg.WBS, lg, deps.Metrics)
	assignmentService := assignment.NewService(assignmentPostgres.NewAssignmentRepository(deps.Gorm), auditService, lg, deps.Metrics)

	doc, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	routes := rest.Routes{
		Health:     rest.NewHealthHandler(map[string]rest.Pinger{"database": deps.DB}),
		Auth:       auth.NewHandler(base, authService),
		User:       user.NewHandler(base, userService),
		Project:    project.NewHandler(base, projectService),
		Task:       task.NewHandler(base, taskService),
		Assignment: assignment.NewHandler(base, assignmentService),
		AuditLog:   auditlog.NewHandler(base, auditService),

		RBAC:           auth.NewRBACAuthorization(caps, lg),
		OpenAPI:        doc,
		AllowedOrigins: cfg.Server.AllowedOriginList(),
	}
	if cfg.Observability.Metrics.Enabled {
		routes.Metrics = deps.Metrics
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, routes, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "wbs"),
	)

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		EventBus: events.NewEventBus(lg),
		Metrics:  metrics.New(reg),
		Router:   chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with the gorm repositories.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
