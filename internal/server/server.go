// Package server contains the HTTP and WebSocket handlers of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "devhub/docs" // swagger docs
	"devhub/internal/authz"
	"devhub/internal/bootstrap"
	"devhub/internal/config"
	"devhub/internal/identity"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/notifications"
	"devhub/internal/repository"
	"devhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	provider identity.Provider
	gate     *authz.Gate
	notifier *notifications.Notifier
	hub      *notifications.Hub

	projects *service.ProjectService
	ledger   *service.EngagementLedger
	contacts *service.ContactService
	profiles *service.ProfileService
	skills   *service.SkillService
	auth     *service.AuthService
}

// NewServer connects to the database and Redis and builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.DevSeedDemo})
	if err != nil {
		return nil, fmt.Errorf("runtime init failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already initialized dependencies.
// redisClient may be nil; caching, revocation and realtime delivery are then
// skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	projectRepo := repository.NewProjectRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	contactRepo := repository.NewContactRepository(db)

	provider := identity.NewProvider(db, redisClient, identity.Options{
		Secret: cfg.JWTSecret,
		TTL:    time.Duration(cfg.JWTTTLHours) * time.Hour,
	})

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("devhub-api"),
		provider:       provider,
		gate:           authz.NewGate(provider, profileRepo),
		projects:       service.NewProjectService(projectRepo, engagementRepo),
		ledger:         service.NewEngagementLedger(engagementRepo, projectRepo),
		contacts:       service.NewContactService(profileRepo, contactRepo),
		profiles:       service.NewProfileService(profileRepo, projectRepo, skillRepo, provider),
		skills:         service.NewSkillService(skillRepo),
		auth:           service.NewAuthService(provider, profileRepo),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
	}

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api", s.Identify())
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	projects := api.Group("/projects")
	projects.Get("/", s.ListProjects)
	projects.Post("/", s.AuthRequired(), s.CreateProject)
	// Specific /:id/:resource routes before the generic /:id routes.
	projects.Get("/:id/comments", s.ListComments)
	projects.Post("/:id/comments", s.AuthRequired(),
		middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	projects.Get("/:id/upvote", s.GetUpvoteStatus)
	projects.Post("/:id/upvote", s.AuthRequired(), s.AddUpvote)
	projects.Delete("/:id/upvote", s.AuthRequired(), s.RemoveUpvote)
	projects.Get("/:id", s.GetProject)
	projects.Put("/:id", s.AuthRequired(), s.UpdateProject)
	projects.Delete("/:id", s.AuthRequired(), s.DeleteProject)

	api.Post("/contact", middleware.RateLimit(s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)
	contactRequests := api.Group("/contact-requests", s.AuthRequired())
	contactRequests.Get("/", s.ListContactRequests)
	contactRequests.Put("/:id/read", s.MarkContactRequestRead)

	profile := api.Group("/profile", s.AuthRequired())
	profile.Get("/", s.GetMyProfile)
	profile.Put("/", s.UpdateMyProfile)
	profile.Get("/skills", s.ListMySkills)
	profile.Post("/skills", s.AddSkill)
	profile.Delete("/skills/:id", s.RemoveSkill)

	developers := api.Group("/developers")
	developers.Get("/", s.ListDevelopers)
	developers.Get("/:id", s.GetDeveloper)

	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// newApp builds the Fiber app with middleware and routes.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "DevHub API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires realtime delivery and starts listening.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	if s.notifier != nil && s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
