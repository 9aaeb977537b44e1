package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/t3labs/time-tracker-api/internal/config"
	"github.com/t3labs/time-tracker-api/internal/handlers"
	"github.com/t3labs/time-tracker-api/internal/mailer"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/repository/memdb"
	"github.com/t3labs/time-tracker-api/internal/repository/mongodb"
	"github.com/t3labs/time-tracker-api/internal/services"
	"github.com/t3labs/time-tracker-api/internal/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to the store
	repos, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// Initialize services
	tokens := token.NewManager(cfg.JWTSecretKey, time.Duration(cfg.TokenExpireMinutes)*time.Minute)
	enforcer := services.NewEnforcer(repos.Employees, repos.Projects, repos.Tasks)

	var invitationMailer mailer.Mailer
	if cfg.EmailHost != "" {
		invitationMailer = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:              cfg.EmailHost,
			Port:              cfg.EmailPort,
			Username:          cfg.EmailUsername,
			Password:          cfg.EmailPassword,
			From:              cfg.EmailFrom,
			ActivationURLBase: cfg.ActivationURLBase,
		}, logger)
	} else {
		invitationMailer = mailer.NewLogMailer(logger)
	}

	authService := services.NewAuthService(repos.Employees, tokens)
	employeeService := services.NewEmployeeService(repos.Employees, enforcer, invitationMailer, logger)
	projectService := services.NewProjectService(repos.Projects, repos.Tasks, repos.TimeWindows, enforcer)
	taskService := services.NewTaskService(repos.Tasks, repos.Projects, repos.TimeWindows, enforcer)
	trackingService := services.NewTimeTrackingService(repos.TimeWindows, repos.Tasks, repos.Projects, repos.Employees)
	analyticsService := services.NewAnalyticsService(repos.TimeWindows, repos.Projects, repos.Tasks, repos.Employees)

	// Initialize handlers
	auth := middleware.NewAuthenticator(cfg.AdminAPIKey, tokens, repos.Employees)
	authHandler := handlers.NewAuthHandler(authService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	trackingHandler := handlers.NewTimeTrackingHandler(trackingService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/activate", authHandler.Activate)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", auth.RequireEmployee(), authHandler.Me)
		}

		v1 := api.Group("/v1")

		// Admin routes
		admin := v1.Group("", auth.RequireAdmin())
		{
			admin.POST("/employees", employeeHandler.Invite)
			admin.GET("/employees", employeeHandler.List)
			admin.GET("/employees/:id", employeeHandler.Get)
			admin.PUT("/employees/:id", employeeHandler.Update)
			admin.POST("/employees/:id/deactivate", employeeHandler.Deactivate)

			admin.POST("/projects", projectHandler.Create)
			admin.GET("/projects", projectHandler.List)
			admin.GET("/projects/:id", projectHandler.Get)
			admin.PUT("/projects/:id", projectHandler.Update)
			admin.DELETE("/projects/:id", projectHandler.Delete)
			admin.POST("/projects/:id/members/:employeeId", projectHandler.AddMember)
			admin.DELETE("/projects/:id/members/:employeeId", projectHandler.RemoveMember)

			admin.POST("/tasks", taskHandler.Create)
			admin.GET("/tasks", taskHandler.List)
			admin.GET("/tasks/:id", taskHandler.Get)
			admin.PUT("/tasks/:id", taskHandler.Update)
			admin.DELETE("/tasks/:id", taskHandler.Delete)
			admin.POST("/tasks/:id/assignees/:employeeId", taskHandler.AddAssignee)
			admin.DELETE("/tasks/:id/assignees/:employeeId", taskHandler.RemoveAssignee)

			admin.PUT("/time-entries", trackingHandler.BulkUpdate)

			admin.GET("/analytics/project-time", analyticsHandler.ProjectTime)
			admin.GET("/analytics/employee-time", analyticsHandler.EmployeeTime)
			admin.GET("/analytics/window", analyticsHandler.Windows)
		}

		// Admins may query any employee's task time, employees only their own
		v1.GET("/analytics/task-time", auth.RequireAdminOrEmployee(), analyticsHandler.TaskTime)

		// Employee routes
		me := v1.Group("", auth.RequireEmployee())
		{
			me.POST("/time-entries", trackingHandler.Submit)
			me.GET("/me/tasks", taskHandler.ListMine)
			me.POST("/employees/:id/permissions", employeeHandler.UpdatePermissions)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for an interrupt and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

// openStore connects the configured backing store and returns its
// repositories with a close function.
func openStore(cfg *config.Config, logger *zap.Logger) (repository.Repositories, func(), error) {
	switch cfg.Store {
	case "memory":
		store, err := memdb.New()
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		logger.Info("using in-memory store")
		return store.Repositories(), func() {}, nil

	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := mongodb.Dial(ctx, cfg.MongoURI, cfg.DatabaseName)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.DatabaseName))
		closeStore := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				logger.Error("failed to close store", zap.Error(err))
			}
		}
		return store.Repositories(), closeStore, nil
	}
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
