package rest

import (
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal/assignment"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
	"github.com/frahmantamala/wbs-tracker/internal/project"
	"github.com/frahmantamala/wbs-tracker/internal/task"
	"github.com/frahmantamala/wbs-tracker/internal/transport/middleware"
	"github.com/frahmantamala/wbs-tracker/internal/transport/swagger"
	"github.com/frahmantamala/wbs-tracker/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes bundles what RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	User       *user.Handler
	Project    *project.Handler
	Task       *task.Handler
	Assignment *assignment.Handler
	AuditLog   *auditlog.Handler

	RBAC           *auth.RBACAuthorization
	Metrics        *metrics.Metrics
	MetricsPath    string
	OpenAPI        *swagger.Document
	AllowedOrigins []string
}

func RegisterAllRoutes(router *chi.Mux, rt Routes, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(rt.AllowedOrigins))
	if rt.Metrics != nil {
		router.Use(rt.Metrics.Middleware)
	}

	if rt.OpenAPI != nil {
		router.Handle(swagger.SpecRoute, rt.OpenAPI.SpecHandler())
		router.Handle("/swagger/*", swagger.Handler())
	}
	if rt.Metrics != nil && rt.MetricsPath != "" {
		router.Handle(rt.MetricsPath, rt.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if rt.Health != nil {
			r.Get("/health", rt.Health.healthCheckHandler)
			r.Get("/ping", rt.Health.pingHandler)
		}

		if rt.Auth == nil {
			return
		}

		r.Post("/auth", rt.Auth.Login)
		r.Post("/auth/refresh", rt.Auth.RefreshToken)
		r.Post("/auth/logout", rt.Auth.Logout)

		// Protected routes that require a session
		r.Group(func(pr chi.Router) {
			pr.Use(rt.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if rt.User != nil {
				pr.Get("/me", rt.User.GetCurrentUser)
				pr.Get("/user", rt.User.GetUsers)
				pr.Get("/user/{id}", rt.User.GetUser)

				pr.Group(func(mr chi.Router) {
					mr.Use(rt.RBAC.RequireCapability(auth.CapManageUsers))
					mr.Post("/user", rt.User.CreateUser)
					mr.Patch("/user/{id}/role", rt.User.UpdateRole)
				})
			}

			if rt.Assignment != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(rt.RBAC.RequireCapability(auth.CapAssign))
					ar.Put("/user/{id}/{list}/{itemID}", rt.Assignment.Assign)
					ar.Delete("/user/{id}/{list}/{itemID}", rt.Assignment.Unassign)
				})
			}

			if rt.Project != nil {
				pr.Get("/me/projects", rt.Project.GetMyProjects)
				pr.Get("/project", rt.Project.GetProjects)
				pr.Get("/projects", rt.Project.GetProjects)
				pr.Get("/projects/{id}", rt.Project.GetProject)

				pr.Group(func(mr chi.Router) {
					mr.Use(rt.RBAC.RequireCapability(auth.CapManageProjects))
					mr.Post("/projects", rt.Project.CreateProject)
					mr.Patch("/projects/{id}", rt.Project.UpdateProject)
				})
			}

			if rt.Task != nil {
				pr.Get("/tasks", rt.Task.GetTasks)
				pr.Get("/tasks/{id}", rt.Task.GetTask)

				pr.Group(func(mr chi.Router) {
					mr.Use(rt.RBAC.RequireCapability(auth.CapManageTasks))
					mr.Post("/tasks", rt.Task.CreateTask)
					mr.Patch("/tasks/{id}", rt.Task.UpdateTask)
				})

				// Access to progress is decided per task by the task service so
				// denied attempts are audited.
				pr.Post("/tasks/{id}/progress", rt.Task.ApplyProgress)
			}

			if rt.AuditLog != nil {
				pr.Group(func(lr chi.Router) {
					lr.Use(rt.RBAC.RequireCapability(auth.CapViewLogs))
					lr.Get("/logs", rt.AuditLog.GetLogs)
				})
			}
		})
	})
}
